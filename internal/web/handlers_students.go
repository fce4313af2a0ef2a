package web

import (
	"net/http"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// studentRequest is the body of POST /api/students. Score is a string so
// that "abc" reports ScoreNotNumeric like an imported line would.
type studentRequest struct {
	IndexNumber string `json:"indexNumber"`
	FullName    string `json:"fullName"`
	Course      string `json:"course"`
	Score       string `json:"score"`
}

type scoreRequest struct {
	Score *int `json:"score"`
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListRecords(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"students": records,
		"count":    len(records),
	})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetRecord(r.Context(), indexParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	rec, err := s.service.AddRecord(r.Context(), core.Fields{
		IndexNumber: req.IndexNumber,
		FullName:    req.FullName,
		Course:      req.Course,
		Score:       req.Score,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Score == nil {
		s.fail(w, r, &core.ValidationError{Field: core.FieldScore, Err: core.ErrScoreNotNumeric})
		return
	}

	rec, err := s.service.UpdateScore(r.Context(), indexParam(r), *req.Score)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteRecord(r.Context(), indexParam(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
