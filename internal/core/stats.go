package core

import (
	"sort"
)

// DefaultTopN is how many top performers a summary lists by default.
const DefaultTopN = 5

// GradeCount is the number of records holding a grade.
type GradeCount struct {
	Grade Grade `json:"grade"`
	Count int   `json:"count"`
}

// CourseSummary aggregates the records of one course.
type CourseSummary struct {
	Course  string  `json:"course"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Highest int     `json:"highest"`
	Lowest  int     `json:"lowest"`
}

// Summary holds aggregate figures over a set of records.
type Summary struct {
	Total          int             `json:"total"`
	Average        float64         `json:"average"`
	Highest        int             `json:"highest"`
	Lowest         int             `json:"lowest"`
	PassCount      int             `json:"passCount"`
	ExcellentCount int             `json:"excellentCount"`
	CourseCount    int             `json:"courseCount"`
	Distribution   []GradeCount    `json:"distribution"`
	Courses        []CourseSummary `json:"courses"`
	TopPerformers  []StudentRecord `json:"topPerformers"`
}

// PassRate returns the share of passing records as a percentage.
func (s Summary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.PassCount) * 100 / float64(s.Total)
}

// CountFor returns the number of records with grade g.
func (s Summary) CountFor(g Grade) int {
	for _, gc := range s.Distribution {
		if gc.Grade == g {
			return gc.Count
		}
	}
	return 0
}

// Summarize computes aggregates over records. topN <= 0 uses DefaultTopN.
// The grade distribution always lists every letter, best first.
func Summarize(records []StudentRecord, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	sum := Summary{
		Distribution:  make([]GradeCount, 0, len(gradeBands)),
		Courses:       []CourseSummary{},
		TopPerformers: []StudentRecord{},
	}

	counts := make(map[Grade]int, len(gradeBands))
	courses := make(map[string]*courseAcc)
	total := 0

	for i, r := range records {
		grade := r.Grade
		if grade == GradeNone {
			grade = Classify(r.Score)
		}
		counts[grade]++

		total += r.Score
		if i == 0 || r.Score > sum.Highest {
			sum.Highest = r.Score
		}
		if i == 0 || r.Score < sum.Lowest {
			sum.Lowest = r.Score
		}
		if r.Passed() {
			sum.PassCount++
		}
		if r.Score >= ExcellentScore {
			sum.ExcellentCount++
		}

		acc, ok := courses[r.Course]
		if !ok {
			acc = &courseAcc{highest: r.Score, lowest: r.Score}
			courses[r.Course] = acc
		}
		acc.add(r.Score)
	}

	sum.Total = len(records)
	if sum.Total > 0 {
		sum.Average = float64(total) / float64(sum.Total)
	}

	for _, g := range Grades() {
		sum.Distribution = append(sum.Distribution, GradeCount{Grade: g, Count: counts[g]})
	}

	for name, acc := range courses {
		sum.Courses = append(sum.Courses, CourseSummary{
			Course:  name,
			Count:   acc.count,
			Average: float64(acc.total) / float64(acc.count),
			Highest: acc.highest,
			Lowest:  acc.lowest,
		})
	}
	sort.Slice(sum.Courses, func(i, j int) bool {
		if sum.Courses[i].Average != sum.Courses[j].Average {
			return sum.Courses[i].Average > sum.Courses[j].Average
		}
		return sum.Courses[i].Course < sum.Courses[j].Course
	})
	sum.CourseCount = len(sum.Courses)

	sum.TopPerformers = TopPerformers(records, topN)

	return sum
}

// TopPerformers returns up to n records ordered by score descending, then
// by index number. The input slice is not modified.
func TopPerformers(records []StudentRecord, n int) []StudentRecord {
	sorted := make([]StudentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].IndexNumber < sorted[j].IndexNumber
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RecentlyUpdated returns up to n records, most recently updated first.
// Ties keep index number order.
func RecentlyUpdated(records []StudentRecord, n int) []StudentRecord {
	sorted := make([]StudentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].UpdatedAt.Equal(sorted[j].UpdatedAt) {
			return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
		}
		return sorted[i].IndexNumber < sorted[j].IndexNumber
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

type courseAcc struct {
	count   int
	total   int
	highest int
	lowest  int
}

func (c *courseAcc) add(score int) {
	c.count++
	c.total += score
	if score > c.highest {
		c.highest = score
	}
	if score < c.lowest {
		c.lowest = score
	}
}
