package cli

import (
	"github.com/JonMunkholm/gradebook/internal/application"
	"github.com/JonMunkholm/gradebook/internal/web"
	"github.com/spf13/cobra"
)

func serveCmd(opts *options) *cobra.Command {
	var memory bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withRuntime(cmd, !memory, func(rt *runtime) error {
				return web.NewServer(rt.service, rt.users, rt.cfg).Run(cmd.Context())
			})
		},
	}
	c.Flags().BoolVar(&memory, "memory", false, "keep data in memory instead of PostgreSQL")
	return c
}

func menuCmd(opts *options) *cobra.Command {
	var memory bool

	c := &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withRuntime(cmd, !memory, func(rt *runtime) error {
				return application.Run(cmd.Context(), rt.service, rt.cfg)
			})
		},
	}
	c.Flags().BoolVar(&memory, "memory", false, "keep data in memory instead of PostgreSQL")
	return c
}
