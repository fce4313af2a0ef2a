package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseBoolParam accepts the strconv.ParseBool spellings; anything else is false.
func parseBoolParam(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// indexParam returns the {index} route parameter.
func indexParam(r *http.Request) string {
	return core.CleanCell(chi.URLParam(r, "index"))
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// attachment sets the download headers for name_<timestamp><ext>.
func attachment(w http.ResponseWriter, contentType, name, ext string) {
	filename := fmt.Sprintf("%s_%s%s", name, time.Now().Format("20060102_150405"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")
}

// rejectionView is the JSON shape of a rejected line.
type rejectionView struct {
	Line    int    `json:"line"`
	Raw     string `json:"raw"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// importView is the JSON shape of an import report.
type importView struct {
	core.ImportReport
	Lines    int             `json:"lines"`
	Accepted int             `json:"accepted"`
	Skipped  int             `json:"skipped"`
	Rejected []rejectionView `json:"rejected"`
}

func newImportView(rep core.ImportReport) importView {
	v := importView{
		ImportReport: rep,
		Lines:        rep.Result.Lines,
		Accepted:     rep.Result.AcceptedCount(),
		Skipped:      rep.Result.Skipped,
		Rejected:     make([]rejectionView, 0, len(rep.Result.Rejected)),
	}
	for _, rej := range rep.Result.Rejected {
		v.Rejected = append(v.Rejected, rejectionView{
			Line:    rej.Line,
			Raw:     strings.TrimRight(rej.Raw, "\r\n"),
			Reason:  rej.Reason(),
			Message: rej.Message(),
		})
	}
	return v
}
