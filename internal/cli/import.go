package cli

import (
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/spf13/cobra"
)

func importCmd(opts *options) *cobra.Command {
	var upsert, dryRun bool
	var format string

	c := &cobra.Command{
		Use:   "import [file]",
		Short: "Import student results from a delimited text file",
		Long: `Import reads one record per line: index number, full name, course, score.
Bad lines are reported and skipped; the command only fails when the file
itself cannot be read or saved. Without a file argument IMPORT_DEFAULT_FILE
is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			path := opts.cfg.Import.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}

			importOpts := core.ImportOptions{DryRun: dryRun}
			if upsert {
				importOpts.Mode = core.ModeUpsert
			}

			// A dry run never touches the database.
			return opts.withRuntime(cmd, !dryRun, func(rt *runtime) error {
				rep, err := rt.service.ImportFile(cmd.Context(), path, importOpts)
				if err != nil {
					return err
				}
				return printImport(cmd.OutOrStdout(), rep, format)
			})
		},
	}

	c.Flags().BoolVar(&upsert, "upsert", false, "overwrite records whose index number already exists")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "validate only; nothing is saved")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}
