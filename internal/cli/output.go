package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// gradeColors follows the usual traffic-light reading of grades.
var gradeColors = map[core.Grade]lipgloss.Color{
	core.GradeA: "42",
	core.GradeB: "114",
	core.GradeC: "220",
	core.GradeD: "208",
	core.GradeF: "196",
}

func gradeStyle(g core.Grade) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(gradeColors[g]).Bold(true)
}

// formatError prefers the mapped user message and falls back to the raw
// error for anything unmapped, such as flag parsing errors.
func formatError(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}

func checkFormat(format string) error {
	switch format {
	case "pretty", "json", "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// importJSON is the --format json shape of an import.
type importJSON struct {
	core.ImportReport
	Lines    int             `json:"lines"`
	Accepted int             `json:"accepted"`
	Skipped  int             `json:"skipped"`
	Rejected []rejectionJSON `json:"rejected"`
}

type rejectionJSON struct {
	Line    int    `json:"line"`
	Raw     string `json:"raw"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func printImport(w io.Writer, rep core.ImportReport, format string) error {
	if format == "json" {
		out := importJSON{
			ImportReport: rep,
			Lines:        rep.Result.Lines,
			Accepted:     rep.Result.AcceptedCount(),
			Skipped:      rep.Result.Skipped,
			Rejected:     make([]rejectionJSON, 0, len(rep.Result.Rejected)),
		}
		for _, rej := range rep.Result.Rejected {
			out.Rejected = append(out.Rejected, rejectionJSON{Line: rej.Line, Raw: rej.Raw, Reason: rej.Reason(), Message: rej.Message()})
		}
		return writeJSON(w, out)
	}

	res := rep.Result
	title := "Import"
	if rep.DryRun {
		title = "Import (dry run, nothing saved)"
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintf(w, "File:      %s\n", rep.FileName)
	if rep.ImportID != "" {
		fmt.Fprintf(w, "Import ID: %s\n", rep.ImportID)
	}
	fmt.Fprintf(w, "Lines:     %d (accepted %d, rejected %d, blank %d)\n",
		res.Lines, res.AcceptedCount(), len(res.Rejected), res.Skipped)
	if !rep.DryRun {
		fmt.Fprintf(w, "Saved:     %d inserted, %d updated, %d failed\n",
			rep.Inserted, rep.Updated, len(rep.PersistFailures))
	}

	if len(res.Rejected) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Rejected lines (%d):", len(res.Rejected))))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, rej := range res.Rejected {
			fmt.Fprintf(tw, "  line %d\t%s\t%s\n", rej.Line, rej.Reason(), strings.TrimSpace(rej.Raw))
		}
		tw.Flush()
	}

	if len(rep.PersistFailures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Not saved (%d):", len(rep.PersistFailures))))
		for _, f := range rep.PersistFailures {
			fmt.Fprintf(w, "  %s: %s\n", f.IndexNumber, f.Reason)
		}
	}

	if res.AcceptedCount() > 0 && len(res.Rejected) == 0 && len(rep.PersistFailures) == 0 {
		fmt.Fprintln(w, okStyle.Render("All lines imported."))
	}
	return nil
}

func printRecords(w io.Writer, records []core.StudentRecord, format string) error {
	if format == "json" {
		if records == nil {
			records = []core.StudentRecord{}
		}
		return writeJSON(w, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, faintStyle.Render("(no records)"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX NUMBER\tFULL NAME\tCOURSE\tSCORE\tGRADE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.IndexNumber, r.FullName, r.Course, r.Score, r.Grade)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("%d record(s)", len(records))))
	return nil
}

func printRecord(w io.Writer, r core.StudentRecord, format string) error {
	if format == "json" {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "Index Number: %s\n", r.IndexNumber)
	fmt.Fprintf(w, "Full Name:    %s\n", r.FullName)
	fmt.Fprintf(w, "Course:       %s\n", r.Course)
	fmt.Fprintf(w, "Score:        %d\n", r.Score)
	fmt.Fprintf(w, "Grade:        %s\n", gradeStyle(r.Grade).Render(string(r.Grade)))
	return nil
}

func printSummary(w io.Writer, sum core.Summary, format string) error {
	if format == "json" {
		return writeJSON(w, map[string]any{
			"summary":  sum,
			"passRate": sum.PassRate(),
		})
	}

	fmt.Fprintln(w, titleStyle.Render("Statistics"))
	fmt.Fprintf(w, "Students:  %d\n", sum.Total)
	if sum.Total == 0 {
		return nil
	}
	fmt.Fprintf(w, "Average:   %.2f\n", sum.Average)
	fmt.Fprintf(w, "Highest:   %d\n", sum.Highest)
	fmt.Fprintf(w, "Lowest:    %d\n", sum.Lowest)
	fmt.Fprintf(w, "Passed:    %d (%.1f%%)\n", sum.PassCount, sum.PassRate())
	fmt.Fprintf(w, "Excellent: %d\n", sum.ExcellentCount)
	fmt.Fprintf(w, "Courses:   %d\n", sum.CourseCount)

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Grades"))
	for _, gc := range sum.Distribution {
		fmt.Fprintf(w, "  %s  %3d  %s\n", gradeStyle(gc.Grade).Render(string(gc.Grade)), gc.Count, bar(gc.Count, sum.Total))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Top performers"))
	for i, r := range sum.TopPerformers {
		fmt.Fprintf(w, "  %d. %s (%s) %s: %d\n", i+1, r.FullName, r.IndexNumber, r.Course, r.Score)
	}
	return nil
}

// bar draws count as a share of total, 20 cells wide.
func bar(count, total int) string {
	if total == 0 {
		return ""
	}
	n := count * 20 / total
	return strings.Repeat("#", n)
}

func printHistory(w io.Writer, batches []core.ImportBatch, format string) error {
	if format == "json" {
		if batches == nil {
			batches = []core.ImportBatch{}
		}
		return writeJSON(w, batches)
	}
	if len(batches) == 0 {
		fmt.Fprintln(w, faintStyle.Render("(no imports yet)"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tFILE\tLINES\tACCEPTED\tREJECTED\tINSERTED\tUPDATED\tFAILED\tBY")
	for _, b := range batches {
		by := b.ImportedBy
		if by == "" {
			by = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			b.CreatedAt.Local().Format("2006-01-02 15:04"), b.FileName,
			b.Lines, b.Accepted, b.Rejected, b.Inserted, b.Updated, b.Failed, by)
	}
	return tw.Flush()
}
