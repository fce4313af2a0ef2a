package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
	"github.com/JonMunkholm/gradebook/internal/report"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// dashboardRecent is how many records the dashboard lists.
const dashboardRecent = 10

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sum, records, err := s.service.Summary(r.Context(), 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Dashboard(templates.DashboardData{
		Summary:     sum,
		Recent:      core.RecentlyUpdated(records, dashboardRecent),
		Bands:       core.GradeBands(),
		GeneratedAt: time.Now(),
	}).Render(r.Context(), w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	available, total := s.service.ImportSlots()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"activeImports":    s.service.ActiveImports(),
		"availableImports": available,
		"maxImports":       total,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, _, err := s.service.Summary(r.Context(), parseIntParam(r, "top", 0))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":  sum,
		"passRate": sum.PassRate(),
		"scale":    core.GradeBands(),
	})
}

// handleReport streams one of the report kinds as a download.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, ok := report.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: unknown report %q", errBadRequest, chi.URLParam(r, "kind")), http.StatusNotFound)
		return
	}
	s.writeReport(w, r, kind)
}

// handleExport is the CSV report under its own route.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, r, report.KindCSV)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, kind report.Kind) {
	sum, records, err := s.service.Summary(r.Context(), parseIntParam(r, "top", 0))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	attachment(w, kind.ContentType(), string(kind)+"_report", kind.Extension())
	if err := report.Write(w, kind, sum, records, time.Now()); err != nil {
		// Headers are already sent; the client sees a truncated file.
		logging.FromContext(r.Context()).Error("report write failed", "kind", kind, "error", err)
	}
}

// handleReset deletes every record. The body must be {"confirm": true}.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if !req.Confirm {
		s.fail(w, r, fmt.Errorf("%w: reset requires confirm=true", errBadRequest))
		return
	}

	n, err := s.service.Reset(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset", "deleted": n})
}
