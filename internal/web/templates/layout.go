// Package templates holds the HTML components served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const styles = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;margin:1rem 0}
th,td{border:1px solid #d1d5db;padding:.35rem .75rem;text-align:left}
th{background:#f3f4f6}
.cards{display:flex;gap:1rem;flex-wrap:wrap}
.card{border:1px solid #d1d5db;border-radius:.5rem;padding:.75rem 1.25rem}
.card b{display:block;font-size:1.5rem}
.error{border-left:4px solid #dc2626;padding:.5rem 1rem;background:#fef2f2}
.muted{color:#6b7280}`

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			"<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body>",
			templ.EscapeString(title), styles); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// ErrorPage renders a user-facing error.
func ErrorPage(status int, message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<div class=\"error\"><h1>%d</h1><p>%s</p><p class=\"muted\">%s</p><p class=\"muted\">Code: %s</p></div>",
			status, templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
	return Layout("Error", body)
}
