package core

// Grade is a letter grade.
type Grade string

const (
	GradeA    Grade = "A"
	GradeB    Grade = "B"
	GradeC    Grade = "C"
	GradeD    Grade = "D"
	GradeF    Grade = "F"
	GradeNone Grade = ""
)

// Score limits and thresholds.
const (
	MinScore       = 0
	MaxScore       = 100
	PassMark       = 50
	ExcellentScore = 80
)

// GradeBand is a closed score interval mapped to a letter.
type GradeBand struct {
	Min   int   `json:"min"`
	Max   int   `json:"max"`
	Grade Grade `json:"grade"`
}

// gradeBands is ordered from the highest band down.
var gradeBands = []GradeBand{
	{Min: 80, Max: 100, Grade: GradeA},
	{Min: 70, Max: 79, Grade: GradeB},
	{Min: 60, Max: 69, Grade: GradeC},
	{Min: 50, Max: 59, Grade: GradeD},
	{Min: 0, Max: 49, Grade: GradeF},
}

// GradeBands returns a copy of the grade table, highest band first.
func GradeBands() []GradeBand {
	out := make([]GradeBand, len(gradeBands))
	copy(out, gradeBands)
	return out
}

// Grades returns all letters, best first.
func Grades() []Grade {
	out := make([]Grade, len(gradeBands))
	for i, b := range gradeBands {
		out[i] = b.Grade
	}
	return out
}

// Classify maps a score to its letter grade.
// Scores outside [MinScore, MaxScore] return GradeNone.
func Classify(score int) Grade {
	for _, b := range gradeBands {
		if score >= b.Min && score <= b.Max {
			return b.Grade
		}
	}
	return GradeNone
}
