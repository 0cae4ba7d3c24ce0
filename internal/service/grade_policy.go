package service

import (
	"errors"
	"math"
)

// ErrInvalidTotalMarks indicates a grade computation against a non-positive
// marks ceiling.
var ErrInvalidTotalMarks = errors.New("total marks must be positive")

// GradeBreakdown is the normalized academic outcome derived from raw marks.
type GradeBreakdown struct {
	Percentage  float64
	GPA         float64
	LetterGrade string
}

type gradeBand struct {
	MinPercentage float64
	GPA           float64
	Letter        string
}

// gradeBands is the single canonical percentage-to-grade mapping, evaluated
// top-down with inclusive lower bounds. Every consumer (single entry, bulk
// entry, class aggregation, report cards) uses this table.
var gradeBands = []gradeBand{
	{90, 4.0, "A+"},
	{80, 3.5, "A"},
	{70, 3.0, "B+"},
	{60, 2.5, "B"},
	{50, 2.0, "C+"},
	{40, 1.5, "C"},
	{33, 1.0, "D"},
	{0, 0.0, "F"},
}

// ComputeGrade maps raw marks against a ceiling to a percentage (rounded to
// two decimals), a grade point and a letter grade.
func ComputeGrade(marksObtained, totalMarks float64) (GradeBreakdown, error) {
	if totalMarks <= 0 {
		return GradeBreakdown{}, ErrInvalidTotalMarks
	}

	percentage := roundTo(marksObtained/totalMarks*100, 2)
	gpa, letter := bandFor(percentage)

	return GradeBreakdown{
		Percentage:  percentage,
		GPA:         gpa,
		LetterGrade: letter,
	}, nil
}

func bandFor(percentage float64) (float64, string) {
	for _, band := range gradeBands {
		if percentage >= band.MinPercentage {
			return band.GPA, band.Letter
		}
	}
	// negative percentages fall through to a fail
	return 0.0, "F"
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
