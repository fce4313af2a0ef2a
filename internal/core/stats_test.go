package core

import (
	"math"
	"testing"
	"time"
)

func sampleRecords() []StudentRecord {
	raw := []struct {
		idx    string
		course string
		score  int
	}{
		{"1", "IT", 78},
		{"2", "IT", 91},
		{"3", "CS", 45},
		{"4", "CS", 65},
		{"5", "Math", 50},
		{"6", "Math", 91},
	}
	out := make([]StudentRecord, len(raw))
	for i, r := range raw {
		out[i] = StudentRecord{IndexNumber: r.idx, FullName: "S" + r.idx, Course: r.course, Score: r.score, Grade: Classify(r.score)}
	}
	return out
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleRecords(), 3)

	if sum.Total != 6 {
		t.Errorf("Total = %d, want 6", sum.Total)
	}
	if want := 420.0 / 6; math.Abs(sum.Average-want) > 1e-9 {
		t.Errorf("Average = %v, want %v", sum.Average, want)
	}
	if sum.Highest != 91 || sum.Lowest != 45 {
		t.Errorf("Highest/Lowest = %d/%d, want 91/45", sum.Highest, sum.Lowest)
	}
	if sum.PassCount != 5 {
		t.Errorf("PassCount = %d, want 5", sum.PassCount)
	}
	if sum.ExcellentCount != 2 {
		t.Errorf("ExcellentCount = %d, want 2", sum.ExcellentCount)
	}
	if sum.CourseCount != 3 {
		t.Errorf("CourseCount = %d, want 3", sum.CourseCount)
	}

	wantDist := map[Grade]int{GradeA: 2, GradeB: 1, GradeC: 1, GradeD: 1, GradeF: 1}
	if len(sum.Distribution) != len(Grades()) {
		t.Fatalf("Distribution has %d entries, want %d", len(sum.Distribution), len(Grades()))
	}
	for g, n := range wantDist {
		if got := sum.CountFor(g); got != n {
			t.Errorf("CountFor(%s) = %d, want %d", g, got, n)
		}
	}

	// IT 84.5, Math 70.5, CS 55
	wantCourses := []string{"IT", "Math", "CS"}
	for i, c := range wantCourses {
		if sum.Courses[i].Course != c {
			t.Errorf("Courses[%d] = %s, want %s", i, sum.Courses[i].Course, c)
		}
	}

	// Ties on 91 are broken by index number.
	wantTop := []string{"2", "6", "1"}
	if len(sum.TopPerformers) != len(wantTop) {
		t.Fatalf("TopPerformers = %d, want %d", len(sum.TopPerformers), len(wantTop))
	}
	for i, idx := range wantTop {
		if sum.TopPerformers[i].IndexNumber != idx {
			t.Errorf("TopPerformers[%d] = %s, want %s", i, sum.TopPerformers[i].IndexNumber, idx)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil, 0)

	if sum.Total != 0 || sum.Average != 0 || sum.PassRate() != 0 {
		t.Errorf("empty summary = %+v", sum)
	}
	if len(sum.Distribution) != len(Grades()) {
		t.Errorf("Distribution should list every grade, got %d", len(sum.Distribution))
	}
	if sum.Courses == nil || sum.TopPerformers == nil {
		t.Error("slices should be empty, not nil")
	}
}

func TestSummary_PassRate(t *testing.T) {
	sum := Summary{Total: 4, PassCount: 3}
	if got := sum.PassRate(); got != 75 {
		t.Errorf("PassRate() = %v, want 75", got)
	}
}

func TestTopPerformers_DoesNotModifyInput(t *testing.T) {
	records := sampleRecords()
	TopPerformers(records, 2)
	if records[0].IndexNumber != "1" {
		t.Error("TopPerformers reordered its input")
	}
	if got := TopPerformers(records, 100); len(got) != len(records) {
		t.Errorf("TopPerformers(n > len) = %d records", len(got))
	}
}

func TestSummarize_ClassifiesMissingGrade(t *testing.T) {
	sum := Summarize([]StudentRecord{{IndexNumber: "1", Course: "IT", Score: 85}}, 1)
	if sum.CountFor(GradeA) != 1 {
		t.Errorf("record without grade should be classified, distribution %+v", sum.Distribution)
	}
}

func TestRecentlyUpdated(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []StudentRecord{
		{IndexNumber: "1", UpdatedAt: base},
		{IndexNumber: "2", UpdatedAt: base.Add(2 * time.Hour)},
		{IndexNumber: "3", UpdatedAt: base.Add(time.Hour)},
		{IndexNumber: "4", UpdatedAt: base.Add(2 * time.Hour)},
	}

	got := RecentlyUpdated(records, 3)
	want := []string{"2", "4", "3"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, idx := range want {
		if got[i].IndexNumber != idx {
			t.Errorf("got[%d] = %s, want %s", i, got[i].IndexNumber, idx)
		}
	}
	if records[1].IndexNumber != "2" || records[0].IndexNumber != "1" {
		t.Error("input slice was reordered")
	}
}
