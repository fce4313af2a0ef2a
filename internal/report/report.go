// Package report renders student results as plain-text reports and CSV.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// TimeLayout is used for the "Generated on" line of every report.
const TimeLayout = "2006-01-02 15:04:05"

// CSVHeader is the first row of a CSV export.
var CSVHeader = []string{"Index Number", "Full Name", "Course", "Score", "Grade"}

// Kind names a report format.
type Kind string

const (
	KindSummary  Kind = "summary"
	KindDetailed Kind = "detailed"
	KindCourses  Kind = "courses"
	KindCSV      Kind = "csv"
)

// Kinds lists every report format.
func Kinds() []Kind {
	return []Kind{KindSummary, KindDetailed, KindCourses, KindCSV}
}

// ParseKind returns the Kind named s, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// ContentType returns the MIME type of a report kind.
func (k Kind) ContentType() string {
	if k == KindCSV {
		return "text/csv"
	}
	return "text/plain; charset=utf-8"
}

// Extension returns the file extension of a report kind.
func (k Kind) Extension() string {
	if k == KindCSV {
		return ".csv"
	}
	return ".txt"
}

// Write renders the report of kind k.
func Write(w io.Writer, k Kind, sum core.Summary, records []core.StudentRecord, generatedAt time.Time) error {
	switch k {
	case KindSummary:
		return WriteSummary(w, sum, generatedAt)
	case KindDetailed:
		return WriteDetailed(w, records, sum, generatedAt)
	case KindCourses:
		return WriteCourses(w, sum, generatedAt)
	case KindCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("unknown report kind %q", k)
	}
}

// WriteSummary writes totals, the grade distribution and the top performers.
func WriteSummary(w io.Writer, sum core.Summary, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)

	header(bw, "Summary Report", generatedAt)
	fmt.Fprintf(bw, "Total Students: %d\n", sum.Total)
	if sum.Total > 0 {
		fmt.Fprintf(bw, "Average Score: %.2f\n", sum.Average)
		fmt.Fprintf(bw, "Highest Score: %d\n", sum.Highest)
		fmt.Fprintf(bw, "Lowest Score: %d\n", sum.Lowest)
		fmt.Fprintf(bw, "Pass Rate: %.1f%%\n", sum.PassRate())
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Grade Distribution:")
	for _, gc := range sum.Distribution {
		fmt.Fprintf(bw, "%s: %d\n", gc.Grade, gc.Count)
	}

	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Top %d Performers:\n", len(sum.TopPerformers))
	fmt.Fprintln(bw, strings.Repeat("-", 50))
	for i, r := range sum.TopPerformers {
		fmt.Fprintf(bw, "%d. %s (%s) - %s: %d (%s)\n", i+1, r.FullName, r.IndexNumber, r.Course, r.Score, r.Grade)
	}

	return bw.Flush()
}

// WriteDetailed writes every record followed by the overall figures.
func WriteDetailed(w io.Writer, records []core.StudentRecord, sum core.Summary, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)

	header(bw, "Detailed Report", generatedAt)

	tw := tabwriter.NewWriter(bw, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Index Number\tFull Name\tCourse\tScore\tGrade")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.IndexNumber, r.FullName, r.Course, r.Score, r.Grade)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Total Students: %d\n", sum.Total)
	fmt.Fprintf(bw, "Average Score: %.2f\n", sum.Average)
	fmt.Fprintf(bw, "Passed: %d\n", sum.PassCount)
	fmt.Fprintf(bw, "Excellent (%d+): %d\n", core.ExcellentScore, sum.ExcellentCount)

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Grade Scale:")
	for _, b := range core.GradeBands() {
		fmt.Fprintf(bw, "%s: %d-%d\n", b.Grade, b.Min, b.Max)
	}

	return bw.Flush()
}

// WriteCourses writes the per-course figures, best average first.
func WriteCourses(w io.Writer, sum core.Summary, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)

	header(bw, "Course Report", generatedAt)
	fmt.Fprintf(bw, "Courses: %d\n\n", sum.CourseCount)

	tw := tabwriter.NewWriter(bw, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Course\tStudents\tAverage\tHighest\tLowest")
	for _, c := range sum.Courses {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%d\t%d\n", c.Course, c.Count, c.Average, c.Highest, c.Lowest)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	return bw.Flush()
}

// WriteCSV writes records with CSVHeader as the first row.
func WriteCSV(w io.Writer, records []core.StudentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.IndexNumber, r.FullName, r.Course, strconv.Itoa(r.Score), string(r.Grade)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and runs fn on it. The file is removed if fn fails.
func WriteFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func header(w io.Writer, title string, generatedAt time.Time) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "Generated on: %s\n\n", generatedAt.Format(TimeLayout))
}
