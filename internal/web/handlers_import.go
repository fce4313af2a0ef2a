package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

// handleImport imports a student file sent either as the "file" field of a
// multipart form or as the raw request body. Query parameters: mode
// (insert|upsert), dry_run, and name for raw uploads.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	opts := core.ImportOptions{
		Mode:   s.service.DefaultMode(),
		DryRun: parseBoolParam(r, "dry_run"),
	}
	if m := r.URL.Query().Get("mode"); m != "" {
		mode, ok := core.ParseImportMode(strings.ToLower(m))
		if !ok {
			s.fail(w, r, fmt.Errorf("%w: unknown mode %q", errBadRequest, m))
			return
		}
		opts.Mode = mode
	}

	name, body, cleanup, err := s.importSource(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer cleanup()

	rep, err := s.service.ImportReader(r.Context(), name, body, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newImportView(rep))
}

// importSource returns the uploaded file name and contents.
func (s *Server) importSource(w http.ResponseWriter, r *http.Request) (string, io.Reader, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload.txt"
		}
		return name, r.Body, noop, nil
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, noop, fmt.Errorf("%w: exceeds %d bytes", core.ErrFileTooLarge, maxSize)
		}
		return "", nil, noop, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, noop, fmt.Errorf("%w: no file provided", errBadRequest)
	}
	cleanup := func() {
		file.Close()
		r.MultipartForm.RemoveAll()
	}
	return header.Filename, file, cleanup, nil
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", core.DefaultHistoryLimit)
	batches, err := s.service.Imports(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imports": batches,
		"count":   len(batches),
	})
}
