package core

import (
	"fmt"
	"strings"
)

// FieldCount is the number of fields every input line must contain.
const FieldCount = 4

// DefaultDelimiter separates fields on an input line.
const DefaultDelimiter = ','

// ParseLine splits one raw line into its four fields.
//
// Each field is cleaned with CleanCell. A line that does not split into
// exactly FieldCount fields fails with ErrMalformedLine.
func ParseLine(line string, delim rune) (Fields, error) {
	if delim == 0 {
		delim = DefaultDelimiter
	}

	parts := strings.Split(line, string(delim))
	if len(parts) != FieldCount {
		return Fields{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedLine, FieldCount, len(parts))
	}

	return Fields{
		IndexNumber: CleanCell(parts[0]),
		FullName:    CleanCell(parts[1]),
		Course:      CleanCell(parts[2]),
		Score:       CleanCell(parts[3]),
	}, nil
}
