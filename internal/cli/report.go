package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/report"
	"github.com/spf13/cobra"
)

func statsCmd(opts *options) *cobra.Command {
	var format string
	var top int

	c := &cobra.Command{
		Use:   "stats",
		Short: "Show averages, grade distribution and top performers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				sum, _, err := rt.service.Summary(cmd.Context(), top)
				if err != nil {
					return err
				}
				return printSummary(cmd.OutOrStdout(), sum, format)
			})
		},
	}
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().IntVar(&top, "top", 0, "number of top performers (default REPORT_TOP_N)")
	return c
}

func reportCmd(opts *options) *cobra.Command {
	var out string
	var top int

	kinds := make([]string, 0, len(report.Kinds()))
	for _, k := range report.Kinds() {
		kinds = append(kinds, string(k))
	}

	c := &cobra.Command{
		Use:       "report [" + strings.Join(kinds, "|") + "]",
		Short:     "Write a report to a file or stdout",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := report.KindSummary
			if len(args) == 1 {
				k, ok := report.ParseKind(args[0])
				if !ok {
					return fmt.Errorf("unknown report %q (expected %s)", args[0], strings.Join(kinds, "|"))
				}
				kind = k
			}

			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				sum, records, err := rt.service.Summary(cmd.Context(), top)
				if err != nil {
					return err
				}
				return writeReport(cmd.OutOrStdout(), out, kind, sum, records)
			})
		},
	}
	c.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	c.Flags().IntVar(&top, "top", 0, "number of top performers (default REPORT_TOP_N)")
	return c
}

// writeReport renders kind to path, or to stdout when path is "" or "-".
func writeReport(stdout io.Writer, path string, kind report.Kind, sum core.Summary, records []core.StudentRecord) error {
	now := time.Now()
	if path == "" || path == "-" {
		return report.Write(stdout, kind, sum, records, now)
	}

	err := report.WriteFile(path, func(w io.Writer) error {
		return report.Write(w, kind, sum, records, now)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, okStyle.Render(fmt.Sprintf("Report saved to %s", path)))
	return nil
}

func historyCmd(opts *options) *cobra.Command {
	var format string
	var limit int

	c := &cobra.Command{
		Use:   "history",
		Short: "List recent imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				batches, err := rt.service.Imports(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printHistory(cmd.OutOrStdout(), batches, format)
			})
		},
	}
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().IntVarP(&limit, "limit", "n", core.DefaultHistoryLimit, "number of imports to show")
	return c
}
