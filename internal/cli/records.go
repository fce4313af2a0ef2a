package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/spf13/cobra"
)

func addCmd(opts *options) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "add <index-number> <full-name> <course> <score>",
		Short: "Add one student result",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				rec, err := rt.service.AddRecord(cmd.Context(), core.Fields{
					IndexNumber: args[0],
					FullName:    args[1],
					Course:      args[2],
					Score:       args[3],
				})
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), rec, format)
			})
		},
	}
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func listCmd(opts *options) *cobra.Command {
	var format, course string

	c := &cobra.Command{
		Use:   "list",
		Short: "List all student results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				records, err := rt.service.ListRecords(cmd.Context())
				if err != nil {
					return err
				}
				if course != "" {
					records = filterCourse(records, course)
				}
				return printRecords(cmd.OutOrStdout(), records, format)
			})
		},
	}
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().StringVar(&course, "course", "", "only list this course (case-insensitive)")
	return c
}

func filterCourse(records []core.StudentRecord, course string) []core.StudentRecord {
	var out []core.StudentRecord
	for _, r := range records {
		if strings.EqualFold(r.Course, course) {
			out = append(out, r)
		}
	}
	return out
}

func showCmd(opts *options) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "show <index-number>",
		Short: "Show one student result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				rec, err := rt.service.GetRecord(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), rec, format)
			})
		},
	}
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func updateScoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "update-score <index-number> <score>",
		Short: "Change a score; the grade is recomputed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := core.ParseScore(args[1])
			if err != nil {
				return err
			}
			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				rec, err := rt.service.UpdateScore(cmd.Context(), args[0], score)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(
					fmt.Sprintf("Updated %s: %d (%s)", rec.IndexNumber, rec.Score, rec.Grade)))
				return nil
			})
		},
	}
}

func deleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index-number>",
		Short: "Delete one student result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				if err := rt.service.DeleteRecord(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Deleted "+core.CleanCell(args[0])))
				return nil
			})
		},
	}
}

func resetCmd(opts *options) *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:   "reset",
		Short: "Delete every student result and the import history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), warnStyle.Render("This deletes every record. Type 'yes' to continue: "))
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(strings.ToLower(line)) != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			return opts.withRuntime(cmd, true, func(rt *runtime) error {
				n, err := rt.service.Reset(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Deleted "+strconv.FormatInt(n, 10)+" record(s)."))
				return nil
			})
		},
	}
	c.Flags().BoolVar(&yes, "yes", false, "do not ask for confirmation")
	return c
}
