// Package core provides the business logic for student result imports.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Fields holds the four raw cells of one input line after trimming.
type Fields struct {
	IndexNumber string
	FullName    string
	Course      string
	Score       string
}

// StudentRecord is a validated student result.
type StudentRecord struct {
	IndexNumber string    `json:"indexNumber"`
	FullName    string    `json:"fullName"`
	Course      string    `json:"course"`
	Score       int       `json:"score"`
	Grade       Grade     `json:"grade"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Passed reports whether the record meets the pass mark.
func (r StudentRecord) Passed() bool {
	return r.Score >= PassMark
}

// Rejection describes one input line that did not produce a record.
type Rejection struct {
	Line int    `json:"line"` // 1-based line number in the input
	Raw  string `json:"raw"`
	Err  error  `json:"-"`
}

// Reason returns the taxonomy name of the rejection, e.g. "MalformedLine".
func (r Rejection) Reason() string {
	return Reason(r.Err)
}

// Message returns a human-readable description of the rejection.
func (r Rejection) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ImportResult contains the outcome of processing one batch of lines.
type ImportResult struct {
	Accepted []StudentRecord
	Rejected []Rejection
	Skipped  int // Blank lines
	Lines    int // Lines read, including blank ones
}

// AcceptedCount returns the number of accepted records.
func (r ImportResult) AcceptedCount() int {
	return len(r.Accepted)
}

// ImportMode controls how accepted records are written to the store.
type ImportMode string

const (
	// ModeInsert rejects records whose index number already exists.
	ModeInsert ImportMode = "insert"
	// ModeUpsert overwrites existing records with the imported values.
	ModeUpsert ImportMode = "upsert"
)

// ParseImportMode converts a string to an ImportMode, defaulting to insert.
func ParseImportMode(s string) (ImportMode, bool) {
	switch ImportMode(s) {
	case ModeInsert, "":
		return ModeInsert, true
	case ModeUpsert:
		return ModeUpsert, true
	default:
		return ModeInsert, false
	}
}

// ImportOptions tune a persisted import.
type ImportOptions struct {
	Mode   ImportMode
	DryRun bool // Validate only; nothing is written
}

// PersistFailure is an accepted record the store refused.
type PersistFailure struct {
	IndexNumber string `json:"indexNumber"`
	Reason      string `json:"reason"`
}

// ImportReport is the result of an import that was handed to the store.
type ImportReport struct {
	ImportID        string           `json:"importId,omitempty"`
	FileName        string           `json:"fileName"`
	Result          ImportResult     `json:"-"`
	Inserted        int              `json:"inserted"`
	Updated         int              `json:"updated"`
	PersistFailures []PersistFailure `json:"persistFailures,omitempty"`
	DryRun          bool             `json:"dryRun"`
	Duration        time.Duration    `json:"duration"`
}

// Persisted returns the number of records written by the store.
func (r ImportReport) Persisted() int {
	return r.Inserted + r.Updated
}
