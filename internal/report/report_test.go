package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/gradebook/internal/core"
)

var generatedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func sample() ([]core.StudentRecord, core.Summary) {
	records := []core.StudentRecord{
		{IndexNumber: "20250001", FullName: "Kwesi Mensah", Course: "IT", Score: 78, Grade: core.GradeB},
		{IndexNumber: "20250002", FullName: "Ama Owusu", Course: "CS", Score: 91, Grade: core.GradeA},
		{IndexNumber: "20250003", FullName: "Yaw, Jr.", Course: "CS", Score: 45, Grade: core.GradeF},
	}
	return records, core.Summarize(records, 5)
}

func TestWriteSummary(t *testing.T) {
	_, sum := sample()
	var buf bytes.Buffer
	if err := WriteSummary(&buf, sum, generatedAt); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Summary Report\n==============\n",
		"Generated on: 2025-03-14 09:30:00",
		"Total Students: 3",
		"A: 1\nB: 1\nC: 0\nD: 0\nF: 1\n",
		"Top 3 Performers:",
		"1. Ama Owusu (20250002) - CS: 91 (A)",
		"3. Yaw, Jr. (20250003) - CS: 45 (F)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, core.Summarize(nil, 5), generatedAt); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Total Students: 0") {
		t.Errorf("empty summary:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Average Score") {
		t.Error("empty summary should not print an average")
	}
}

func TestWriteDetailed(t *testing.T) {
	records, sum := sample()
	var buf bytes.Buffer
	if err := WriteDetailed(&buf, records, sum, generatedAt); err != nil {
		t.Fatalf("WriteDetailed() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Detailed Report", "Kwesi Mensah", "Average Score: 71.33", "A: 80-100", "F: 0-49"} {
		if !strings.Contains(out, want) {
			t.Errorf("detailed report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCourses(t *testing.T) {
	_, sum := sample()
	var buf bytes.Buffer
	if err := WriteCourses(&buf, sum, generatedAt); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	it := strings.Index(out, "IT ")
	cs := strings.Index(out, "CS ")
	if it < 0 || cs < 0 || it > cs {
		t.Errorf("IT (78.00) should be listed before CS (68.00):\n%s", out)
	}
	if !strings.Contains(out, "Courses: 2") {
		t.Errorf("missing course count:\n%s", out)
	}
}

func TestWriteCSV(t *testing.T) {
	records, _ := sample()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if strings.Join(rows[0], ",") != "Index Number,Full Name,Course,Score,Grade" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[3][1] != "Yaw, Jr." {
		t.Errorf("comma in name not preserved: %q", rows[3][1])
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"summary", KindSummary, true},
		{" CSV ", KindCSV, true},
		{"Courses", KindCourses, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestWrite_Dispatch(t *testing.T) {
	records, sum := sample()
	for _, k := range Kinds() {
		var buf bytes.Buffer
		if err := Write(&buf, k, sum, records, generatedAt); err != nil {
			t.Errorf("Write(%s) error = %v", k, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s) produced no output", k)
		}
	}
	if err := Write(io.Discard, Kind("pdf"), sum, records, generatedAt); err == nil {
		t.Error("Write(unknown) should fail")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary_report.txt")

	_, sum := sample()
	err := WriteFile(path, func(w io.Writer) error { return WriteSummary(w, sum, generatedAt) })
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.HasPrefix(data, []byte("Summary Report")) {
		t.Errorf("file content = %q", data)
	}

	failPath := filepath.Join(dir, "failed.txt")
	boom := errors.New("boom")
	if err := WriteFile(failPath, func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("WriteFile() error = %v, want boom", err)
	}
	if _, err := os.Stat(failPath); !os.IsNotExist(err) {
		t.Error("failed report file should be removed")
	}

	if err := WriteFile(filepath.Join(dir, "missing", "x.txt"), func(io.Writer) error { return nil }); err == nil {
		t.Error("WriteFile() into a missing directory should fail")
	}
}
