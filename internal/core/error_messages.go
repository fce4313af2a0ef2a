// error_messages.go maps errors to user-facing messages with a support code.
//
// Codes are grouped by category:
//
//	VAL000 - Form fields invalid (per-field detail travels separately)
//	VAL001 - Malformed line (wrong number of fields)
//	VAL002 - Index number is empty
//	VAL003 - Name is empty
//	VAL004 - Course is empty
//	VAL005 - Score is not a whole number
//	VAL006 - Score outside 0-100
//	VAL007 - Index number repeated within the file
//	VAL008 - Index number longer than the column allows
//
//	FILE001 - File could not be opened or read
//	FILE002 - File exceeds the size limit
//
//	DB001 - Index number already stored
//	DB002 - Student not found
//	DB003 - Unique constraint (text match)
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//
//	IMP001 - Too many imports running
//	IMP002 - Request cancelled
//	IMP003 - Request deadline exceeded
//
//	AUTH001 - Username or email taken
//	AUTH002 - Wrong username or password
//	AUTH003 - Missing or expired session
//
//	REQ001 - Request body could not be decoded
//	RATE001 - Too many requests
//
//	ERR000 - Anything else; check the logs for the technical error
//
// Sentinel errors are matched with errors.Is first. Errors from outside this
// package (drivers, network) fall back to case-insensitive substring
// patterns, where the first match wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// sentinelMessage pairs an error value with its user message.
type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages is checked with errors.Is, in order.
var sentinelMessages = []sentinelMessage{
	{ErrMalformedLine, UserMessage{
		Message: "Line does not have exactly four fields",
		Action:  "Use index number, name, course, score separated by the delimiter",
		Code:    "VAL001",
	}},
	{ErrEmptyIndexNumber, UserMessage{
		Message: "Index number is empty",
		Action:  "Fill in the student's index number",
		Code:    "VAL002",
	}},
	{ErrEmptyName, UserMessage{
		Message: "Student name is empty",
		Action:  "Fill in the student's full name",
		Code:    "VAL003",
	}},
	{ErrEmptyCourse, UserMessage{
		Message: "Course is empty",
		Action:  "Fill in the course name",
		Code:    "VAL004",
	}},
	{ErrScoreNotNumeric, UserMessage{
		Message: "Score is not a whole number",
		Action:  "Enter the score as a whole number, for example 78",
		Code:    "VAL005",
	}},
	{ErrScoreOutOfRange, UserMessage{
		Message: "Score is outside the allowed range",
		Action:  fmt.Sprintf("Enter a score between %d and %d", MinScore, MaxScore),
		Code:    "VAL006",
	}},
	{ErrDuplicateIndexNumber, UserMessage{
		Message: "Index number appears more than once in the file",
		Action:  "Keep one line per student",
		Code:    "VAL007",
	}},
	{ErrIndexNumberTooLong, UserMessage{
		Message: "Index number is too long",
		Action:  fmt.Sprintf("Use at most %d characters for the index number", MaxIndexNumberLength),
		Code:    "VAL008",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum size",
		Action:  "Split the file into smaller parts",
		Code:    "FILE002",
	}},
	{ErrFileUnreadable, UserMessage{
		Message: "File could not be read",
		Action:  "Check the file name and permissions",
		Code:    "FILE001",
	}},
	{ErrDuplicateKey, UserMessage{
		Message: "A student with this index number already exists",
		Action:  "Update the existing record or import in upsert mode",
		Code:    "DB001",
	}},
	{ErrNotFound, UserMessage{
		Message: "Student not found",
		Action:  "Check the index number",
		Code:    "DB002",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "IMP002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "IMP003",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// Patterns are matched using strings.Contains and the first match wins, so
// more specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg:     UserMessage{Message: "A student with this index number already exists", Action: "Update the existing record or import in upsert mode", Code: "DB001"},
	},
	{
		pattern: "unique constraint",
		msg:     UserMessage{Message: "This value must be unique but already exists", Action: "Check for duplicate entries", Code: "DB003"},
	},
	{
		pattern: "connection refused",
		msg:     UserMessage{Message: "Unable to connect to database", Action: "Please try again in a few moments", Code: "DB004"},
	},
	{
		pattern: "connection reset",
		msg:     UserMessage{Message: "Database connection was interrupted", Action: "Please try again", Code: "DB005"},
	},
	{
		pattern: "timeout",
		msg:     UserMessage{Message: "Operation timed out", Action: "Try a smaller file or try again later", Code: "DB006"},
	},
	{
		pattern: "username or email already",
		msg:     UserMessage{Message: "Username or email is already registered", Action: "Choose another username or log in", Code: "AUTH001"},
	},
	{
		pattern: "invalid credentials",
		msg:     UserMessage{Message: "Wrong username or password", Action: "Check your credentials and try again", Code: "AUTH002"},
	},
	{
		pattern: "invalid token",
		msg:     UserMessage{Message: "Your session is missing or has expired", Action: "Log in again", Code: "AUTH003"},
	},
	{
		pattern: "invalid request",
		msg:     UserMessage{Message: "The request could not be read", Action: "Check the request body and parameters", Code: "REQ001"},
	},
	{
		pattern: "rate limit",
		msg:     UserMessage{Message: "Too many requests", Action: "Please wait a moment before trying again", Code: "RATE001"},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinel errors are matched first; otherwise the error text is
// searched for known patterns. If nothing matches, a generic fallback
// message with code ERR000 is returned.
//
// Example:
//
//	msg := MapError(ErrScoreOutOfRange)
//	// msg.Code == "VAL006"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
