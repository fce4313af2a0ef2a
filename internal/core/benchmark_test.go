package core

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Cell Cleaning Benchmarks
// ============================================================================

// BenchmarkCleanCell runs for every field of every line.
func BenchmarkCleanCell(b *testing.B) {
	testCases := []string{
		"normal value",
		`="20250001"`,    // Spreadsheet text export
		`"quoted"`,       // Quoted
		"  whitespace  ", // Whitespace
		"'single quoted'",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			CleanCell(tc)
		}
	}
}

func BenchmarkCleanCell_Simple(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CleanCell("simple value")
	}
}

// ============================================================================
// Line Pipeline Benchmarks
// ============================================================================

func BenchmarkParseLine(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = ParseLine(`20250001, "Kwesi Mensah", IT, ="78"`, ',')
	}
}

func BenchmarkValidate(b *testing.B) {
	f := Fields{IndexNumber: "20250001", FullName: "Kwesi Mensah", Course: "IT", Score: "78"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Validate(f)
	}
}

func BenchmarkClassify(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Classify(i % 101)
	}
}

// ============================================================================
// Import Benchmarks
// ============================================================================

// generateTestFile returns n lines with every tenth one malformed.
func generateTestFile(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		if i%10 == 9 {
			fmt.Fprintf(&buf, "%08d, Student %d, CS\n", i, i)
			continue
		}
		fmt.Fprintf(&buf, "%08d, Student %d, Course %d, %d\n", i, i, i%7, i%101)
	}
	return buf.Bytes()
}

func BenchmarkImportReader(b *testing.B) {
	data := generateTestFile(1000)
	imp := NewImporter(',')

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := imp.ImportReader(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkImportLines_Large(b *testing.B) {
	lines := strings.Split(string(generateTestFile(10000)), "\n")
	imp := NewImporter(',')

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		imp.ImportLines(lines)
	}
}

func BenchmarkSanitizeUTF8_LargeDataset(b *testing.B) {
	data := bytes.Repeat([]byte("20250001, Kwesi Mensah, IT, 78\n"), 300)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sanitizeUTF8(data)
	}
}

// ============================================================================
// Persistence and Summary Benchmarks
// ============================================================================

func BenchmarkMemStoreSaveBatch(b *testing.B) {
	res := NewImporter(',').ImportLines(strings.Split(string(generateTestFile(1000)), "\n"))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store := NewMemStore()
		if _, err := store.SaveBatch(ctx, res.Accepted, SaveOptions{Mode: ModeInsert}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSummarize(b *testing.B) {
	records := NewImporter(',').ImportLines(strings.Split(string(generateTestFile(5000)), "\n")).Accepted

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Summarize(records, DefaultTopN)
	}
}

func BenchmarkCleanCellParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			CleanCell(`="20250001"`)
		}
	})
}
