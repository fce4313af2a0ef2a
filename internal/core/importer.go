package core

// importer.go runs a batch of raw lines through the parser, the validator and
// the classifier.
//
// Every line is handled on its own: a bad line becomes a Rejection and the
// batch carries on. The only shared state is the set of index numbers seen
// so far, which exists for the lifetime of one import call and is used to
// reject repeats within the batch. The store is never consulted here.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// MaxLineLength bounds a single input line.
var MaxLineLength = 1024 * 1024

const utf8BOM = "\uFEFF"

// Importer processes batches of student result lines.
type Importer struct {
	// Delimiter separates fields on a line. Zero means DefaultDelimiter.
	Delimiter rune

	// MaxFileSize rejects files larger than this many bytes. Zero disables the check.
	MaxFileSize int64
}

// NewImporter returns an Importer using delim as the field separator.
func NewImporter(delim rune) *Importer {
	return &Importer{Delimiter: delim}
}

// batch holds the per-call state of one import.
type batch struct {
	delim  rune
	seen   map[string]int // index number -> line of first occurrence
	result ImportResult
}

func (imp *Importer) newBatch() *batch {
	delim := DefaultDelimiter
	if imp != nil && imp.Delimiter != 0 {
		delim = imp.Delimiter
	}
	return &batch{
		delim: delim,
		seen:  make(map[string]int),
	}
}

// add processes one line. lineNum is 1-based.
func (b *batch) add(lineNum int, line string) {
	b.result.Lines++

	if isBlankLine(line) {
		b.result.Skipped++
		return
	}

	rec, err := b.process(line)
	if err != nil {
		b.result.Rejected = append(b.result.Rejected, Rejection{
			Line: lineNum,
			Raw:  line,
			Err:  err,
		})
		return
	}

	b.seen[rec.IndexNumber] = lineNum
	b.result.Accepted = append(b.result.Accepted, rec)
}

// reject records lineNum as rejected without parsing it.
func (b *batch) reject(lineNum int, raw string, err error) {
	b.result.Lines++
	b.result.Rejected = append(b.result.Rejected, Rejection{Line: lineNum, Raw: raw, Err: err})
}

func (b *batch) process(line string) (StudentRecord, error) {
	fields, err := ParseLine(line, b.delim)
	if err != nil {
		return StudentRecord{}, err
	}

	rec, err := Validate(fields)
	if err != nil {
		return StudentRecord{}, err
	}

	if first, dup := b.seen[rec.IndexNumber]; dup {
		return StudentRecord{}, &ValidationError{
			Field: FieldIndexNumber,
			Value: rec.IndexNumber,
			Err:   fmt.Errorf("%w (first seen on line %d)", ErrDuplicateIndexNumber, first),
		}
	}

	return rec, nil
}

// ImportLines processes lines in order. Line numbers start at 1.
func (imp *Importer) ImportLines(lines []string) ImportResult {
	b := imp.newBatch()
	for i, line := range lines {
		if i == 0 {
			line = strings.TrimPrefix(line, utf8BOM)
		}
		b.add(i+1, line)
	}
	return b.result
}

// ImportReader reads newline-separated lines from r and processes them.
// A line longer than MaxLineLength is rejected as malformed and the rest of
// it is discarded. A read error is returned wrapped in ErrFileUnreadable
// together with the lines processed so far.
func (imp *Importer) ImportReader(r io.Reader) (ImportResult, error) {
	b := imp.newBatch()
	br := bufio.NewReaderSize(r, readBufferSize)

	lineNum := 0
	for {
		raw, oversized, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return b.result, fmt.Errorf("%w: line %d: %w", ErrFileUnreadable, lineNum+1, err)
		}

		lineNum++
		if lineNum == 1 {
			raw = bytes.TrimPrefix(raw, []byte(utf8BOM))
		}
		line := string(sanitizeUTF8(raw))

		if oversized {
			b.reject(lineNum, truncateRaw(line), fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedLine, MaxLineLength))
			continue
		}
		b.add(lineNum, strings.TrimSuffix(line, "\r"))
	}

	return b.result, nil
}

const (
	readBufferSize = 64 * 1024
	maxRawShown    = 80
)

// readLine returns the next line without its terminator. When the line is
// longer than MaxLineLength only the first MaxLineLength bytes are kept and
// oversized is set; the remainder is consumed.
func readLine(br *bufio.Reader) (line []byte, oversized bool, err error) {
	chunk, isPrefix, err := br.ReadLine()
	if err != nil {
		return nil, false, err
	}

	line = append(line, chunk...)
	for isPrefix {
		chunk, isPrefix, err = br.ReadLine()
		if err != nil {
			return nil, false, err
		}
		if !oversized {
			line = append(line, chunk...)
		}
		if len(line) > MaxLineLength {
			oversized = true
		}
	}

	if len(line) > MaxLineLength {
		return line[:MaxLineLength], true, nil
	}
	return line, oversized, nil
}

func truncateRaw(line string) string {
	if len(line) <= maxRawShown {
		return line
	}
	cut := maxRawShown
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}

// ImportFile opens path and processes its lines.
// Failing to open or read the file is the only error returned; bad lines
// are reported in the result.
func (imp *Importer) ImportFile(path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	if info.IsDir() {
		return ImportResult{}, fmt.Errorf("%w: %s is a directory", ErrFileUnreadable, path)
	}
	if imp != nil && imp.MaxFileSize > 0 && info.Size() > imp.MaxFileSize {
		return ImportResult{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), imp.MaxFileSize)
	}

	return imp.ImportReader(f)
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}
