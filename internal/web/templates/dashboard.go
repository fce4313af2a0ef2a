package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/a-h/templ"
)

// DashboardData feeds the dashboard page.
type DashboardData struct {
	Summary     core.Summary
	Recent      []core.StudentRecord
	Bands       []core.GradeBand
	GeneratedAt time.Time
}

// Dashboard shows totals, the grade distribution, the grading scale and
// the most recently updated records.
func Dashboard(d DashboardData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		sum := d.Summary

		ew.printf("<h1>Student Results</h1><p class=\"muted\">Updated %s</p>", d.GeneratedAt.Format("2006-01-02 15:04:05"))

		ew.printf("<div class=\"cards\">")
		card(ew, "Students", fmt.Sprint(sum.Total))
		card(ew, "Average", fmt.Sprintf("%.2f", sum.Average))
		card(ew, "Highest", fmt.Sprint(sum.Highest))
		card(ew, "Lowest", fmt.Sprint(sum.Lowest))
		card(ew, "Pass rate", fmt.Sprintf("%.1f%%", sum.PassRate()))
		card(ew, "Courses", fmt.Sprint(sum.CourseCount))
		ew.printf("</div>")

		ew.printf("<h2>Grade distribution</h2><table><tr><th>Grade</th><th>Range</th><th>Students</th></tr>")
		for _, b := range d.Bands {
			ew.printf("<tr><td>%s</td><td>%d-%d</td><td>%d</td></tr>",
				templ.EscapeString(string(b.Grade)), b.Min, b.Max, sum.CountFor(b.Grade))
		}
		ew.printf("</table>")

		if len(sum.Courses) > 0 {
			ew.printf("<h2>Courses</h2><table><tr><th>Course</th><th>Students</th><th>Average</th></tr>")
			for _, c := range sum.Courses {
				ew.printf("<tr><td>%s</td><td>%d</td><td>%.2f</td></tr>", templ.EscapeString(c.Course), c.Count, c.Average)
			}
			ew.printf("</table>")
		}

		ew.printf("<h2>Recent records</h2>")
		if len(d.Recent) == 0 {
			ew.printf("<p class=\"muted\">No records yet. Import a file to get started.</p>")
			return ew.err
		}
		ew.printf("<table><tr><th>Index Number</th><th>Full Name</th><th>Course</th><th>Score</th><th>Grade</th></tr>")
		for _, r := range d.Recent {
			ew.printf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>",
				templ.EscapeString(r.IndexNumber), templ.EscapeString(r.FullName),
				templ.EscapeString(r.Course), r.Score, templ.EscapeString(string(r.Grade)))
		}
		ew.printf("</table>")
		return ew.err
	})
	return Layout("Student Results", body)
}

func card(ew *errWriter, label, value string) {
	ew.printf("<div class=\"card\"><span class=\"muted\">%s</span><b>%s</b></div>",
		templ.EscapeString(label), templ.EscapeString(value))
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
