package core

import (
	"errors"
	"fmt"
)

// Per-line data errors. None of them is fatal to a batch.
var (
	ErrMalformedLine        = errors.New("malformed line")
	ErrEmptyIndexNumber     = errors.New("index number is empty")
	ErrIndexNumberTooLong   = errors.New("index number too long")
	ErrEmptyName            = errors.New("name is empty")
	ErrEmptyCourse          = errors.New("course is empty")
	ErrScoreNotNumeric      = errors.New("score is not numeric")
	ErrScoreOutOfRange      = errors.New("score out of range")
	ErrDuplicateIndexNumber = errors.New("duplicate index number in batch")
)

// Batch-level failures. The input cannot be opened or read at all, or it
// exceeds the configured size limit.
var (
	ErrFileUnreadable = errors.New("file unreadable")
	ErrFileTooLarge   = errors.New("file too large")
)

// Persistence errors.
var (
	ErrDuplicateKey = errors.New("duplicate key: index number already exists")
	ErrNotFound     = errors.New("student not found")
)

// reasons maps each data error to its taxonomy name.
var reasons = []struct {
	err  error
	name string
}{
	{ErrMalformedLine, "MalformedLine"},
	{ErrEmptyIndexNumber, "EmptyIndexNumber"},
	{ErrIndexNumberTooLong, "IndexNumberTooLong"},
	{ErrEmptyName, "EmptyName"},
	{ErrEmptyCourse, "EmptyCourse"},
	{ErrScoreNotNumeric, "ScoreNotNumeric"},
	{ErrScoreOutOfRange, "ScoreOutOfRange"},
	{ErrDuplicateIndexNumber, "DuplicateIndexNumber"},
	{ErrDuplicateKey, "DuplicateKey"},
	{ErrNotFound, "NotFound"},
	{ErrFileTooLarge, "FileTooLarge"},
	{ErrFileUnreadable, "FileUnreadable"},
}

// Reason returns the taxonomy name for err, or "Unknown".
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	return "Unknown"
}

// ValidationError represents a validation failure for a single field.
type ValidationError struct {
	Field string // Field name
	Value string // The invalid value
	Err   error  // One of the sentinel errors above
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (%q)", e.Field, e.Err, e.Value)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

