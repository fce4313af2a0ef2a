package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/report"
	tea "github.com/charmbracelet/bubbletea"
)

// maxRejectedShown caps the rejected lines listed after an import.
const maxRejectedShown = 10

/* ----------------------------------------
	ACTIONS
---------------------------------------- */

// run executes fn off the UI loop and turns its result into a message.
func (m *Model) run(fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		out, err := fn(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg(out)
	}
}

func (m *Model) importFile(path string) tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		rep, err := m.service.ImportFile(ctx, path, core.ImportOptions{})
		if err != nil {
			return "", err
		}
		return formatImport(rep), nil
	})
}

func (m *Model) viewAll() tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		records, err := m.service.ListRecords(ctx)
		if err != nil {
			return "", err
		}
		if len(records) == 0 {
			return "No records loaded.", nil
		}
		var b strings.Builder
		writeRecords(&b, records)
		fmt.Fprintf(&b, "\n%d record(s)", len(records))
		return b.String(), nil
	})
}

func (m *Model) viewOne(index string) tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		rec, err := m.service.GetRecord(ctx, core.CleanCell(index))
		if err != nil {
			return "", err
		}
		var b strings.Builder
		writeRecords(&b, []core.StudentRecord{rec})
		return b.String(), nil
	})
}

func (m *Model) updateScore(index, raw string) tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		score, err := core.ParseScore(raw)
		if err != nil {
			return "", err
		}
		rec, err := m.service.UpdateScore(ctx, core.CleanCell(index), score)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated %s (%s): score %d, grade %s",
			rec.FullName, rec.IndexNumber, rec.Score, rec.Grade), nil
	})
}

func (m *Model) exportReport(kind report.Kind, path string) tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		sum, records, err := m.service.Summary(ctx, m.service.TopN())
		if err != nil {
			return "", err
		}
		err = report.WriteFile(path, func(w io.Writer) error {
			return report.Write(w, kind, sum, records, time.Now())
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Saved %s report for %d student(s) to %s", kind, sum.Total, path), nil
	})
}

func (m *Model) statistics() tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		sum, _, err := m.service.Summary(ctx, m.service.TopN())
		if err != nil {
			return "", err
		}
		return formatSummary(sum), nil
	})
}

func (m *Model) reset() tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		n, err := m.service.Reset(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted %d record(s).", n), nil
	})
}

/* ----------------------------------------
	FORMATTING
---------------------------------------- */

func formatImport(rep core.ImportReport) string {
	res := rep.Result
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %d line(s), %d accepted, %d rejected, %d blank\n",
		rep.FileName, res.Lines, res.AcceptedCount(), len(res.Rejected), res.Skipped)
	fmt.Fprintf(&b, "Saved: %d inserted, %d updated", rep.Inserted, rep.Updated)
	if n := len(rep.PersistFailures); n > 0 {
		fmt.Fprintf(&b, ", %d failed", n)
	}

	if len(res.Rejected) > 0 {
		b.WriteString("\n\nRejected:\n")
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for i, r := range res.Rejected {
			if i == maxRejectedShown {
				fmt.Fprintf(tw, "...\t%d more\t\n", len(res.Rejected)-maxRejectedShown)
				break
			}
			fmt.Fprintf(tw, "line %d\t%s\t%s\n", r.Line, r.Reason(), r.Raw)
		}
		tw.Flush()
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeRecords(w io.Writer, records []core.StudentRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tCOURSE\tSCORE\tGRADE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.IndexNumber, r.FullName, r.Course, r.Score, r.Grade)
	}
	tw.Flush()
}

func formatSummary(sum core.Summary) string {
	if sum.Total == 0 {
		return "No records loaded."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Students:  %d\n", sum.Total)
	fmt.Fprintf(&b, "Average:   %.2f\n", sum.Average)
	fmt.Fprintf(&b, "Highest:   %d\n", sum.Highest)
	fmt.Fprintf(&b, "Lowest:    %d\n", sum.Lowest)
	fmt.Fprintf(&b, "Pass rate: %.1f%%\n\n", sum.PassRate())

	for _, gc := range sum.Distribution {
		fmt.Fprintf(&b, "%s %-3d %s\n", gradeStyle(gc.Grade).Render(string(gc.Grade)), gc.Count, strings.Repeat("█", gc.Count))
	}

	if len(sum.TopPerformers) > 0 {
		b.WriteString("\nTop performers:\n")
		for i, r := range sum.TopPerformers {
			fmt.Fprintf(&b, "  %d. %s (%s) %s: %d\n", i+1, r.FullName, r.IndexNumber, r.Course, r.Score)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
