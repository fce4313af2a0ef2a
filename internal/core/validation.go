package core

// validation.go turns the four cleaned fields of a line into a StudentRecord.
//
// Checks run in a fixed order and stop at the first failure:
//  1. index number present and at most MaxIndexNumberLength characters
//  2. name present
//  3. course present
//  4. score is an integer
//  5. score within [MinScore, MaxScore]
//
// Out-of-range scores are rejected, never clamped.

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxIndexNumberLength matches the width of the index_number column.
const MaxIndexNumberLength = 20

// Field names used in validation errors.
const (
	FieldIndexNumber = "index number"
	FieldFullName    = "name"
	FieldCourse      = "course"
	FieldScore       = "score"
)

// Validate checks f and returns the validated record with its grade attached.
func Validate(f Fields) (StudentRecord, error) {
	if f.IndexNumber == "" {
		return StudentRecord{}, &ValidationError{Field: FieldIndexNumber, Err: ErrEmptyIndexNumber}
	}
	if utf8.RuneCountInString(f.IndexNumber) > MaxIndexNumberLength {
		return StudentRecord{}, &ValidationError{Field: FieldIndexNumber, Value: f.IndexNumber, Err: ErrIndexNumberTooLong}
	}
	if f.FullName == "" {
		return StudentRecord{}, &ValidationError{Field: FieldFullName, Err: ErrEmptyName}
	}
	if f.Course == "" {
		return StudentRecord{}, &ValidationError{Field: FieldCourse, Err: ErrEmptyCourse}
	}

	score, err := ParseScore(f.Score)
	if err != nil {
		return StudentRecord{}, err
	}

	return StudentRecord{
		IndexNumber: f.IndexNumber,
		FullName:    f.FullName,
		Course:      f.Course,
		Score:       score,
		Grade:       Classify(score),
	}, nil
}

// ParseScore parses and range-checks a raw score.
func ParseScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: FieldScore, Value: raw, Err: ErrScoreNotNumeric}
	}
	if err := CheckScore(score); err != nil {
		return 0, err
	}
	return score, nil
}

// CheckScore returns ErrScoreOutOfRange if score is outside [MinScore, MaxScore].
func CheckScore(score int) error {
	if score < MinScore || score > MaxScore {
		return &ValidationError{Field: FieldScore, Value: strconv.Itoa(score), Err: ErrScoreOutOfRange}
	}
	return nil
}
