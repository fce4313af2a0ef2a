// Package cli implements the gradebook command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/spf13/cobra"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(&options{open: openRuntime})
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+formatError(err)))
		os.Exit(1)
	}
}

// options are shared by every command.
type options struct {
	envFile string
	debug   bool
	cfg     *config.Config
	open    openFunc
}

// withRuntime opens a runtime for one command and closes it afterwards.
// A database-backed runtime has its schema created first.
func (o *options) withRuntime(cmd *cobra.Command, withDB bool, fn func(*runtime) error) error {
	rt, err := o.open(cmd.Context(), o.cfg, withDB)
	if err != nil {
		return err
	}
	defer rt.Close()

	if withDB {
		if err := rt.migrate(cmd.Context()); err != nil {
			return err
		}
	}
	return fn(rt)
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gradebook",
		Short:         "Import, grade and report student results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.cfg != nil {
				return nil
			}
			cfg, err := loadConfig(opts.envFile, opts.debug)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load environment from this file instead of .env")

	cmd.AddCommand(
		migrateCmd(opts),
		importCmd(opts),
		addCmd(opts),
		listCmd(opts),
		showCmd(opts),
		updateScoreCmd(opts),
		deleteCmd(opts),
		statsCmd(opts),
		reportCmd(opts),
		historyCmd(opts),
		resetCmd(opts),
		userCmd(opts),
		serveCmd(opts),
		menuCmd(opts),
	)
	return cmd
}

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withRuntime(cmd, true, func(*runtime) error {
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Schema is up to date."))
				return nil
			})
		},
	}
}
