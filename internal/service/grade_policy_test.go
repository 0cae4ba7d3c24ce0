package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeGradeBands(t *testing.T) {
	cases := []struct {
		name       string
		marks      float64
		total      float64
		percentage float64
		gpa        float64
		letter     string
	}{
		{"perfect score", 100, 100, 100, 4.0, "A+"},
		{"lower bound of A+", 90, 100, 90, 4.0, "A+"},
		{"just below A+", 89.99, 100, 89.99, 3.5, "A"},
		{"lower bound of A", 80, 100, 80, 3.5, "A"},
		{"lower bound of B+", 70, 100, 70, 3.0, "B+"},
		{"lower bound of B", 60, 100, 60, 2.5, "B"},
		{"lower bound of C+", 50, 100, 50, 2.0, "C+"},
		{"lower bound of C", 40, 100, 40, 1.5, "C"},
		{"lower bound of D", 33, 100, 33, 1.0, "D"},
		{"just below D", 32.99, 100, 32.99, 0.0, "F"},
		{"zero marks", 0, 100, 0, 0.0, "F"},
		{"non-100 ceiling", 42, 50, 84, 3.5, "A"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			breakdown, err := ComputeGrade(tc.marks, tc.total)
			require.NoError(t, err)
			require.Equal(t, tc.percentage, breakdown.Percentage)
			require.Equal(t, tc.gpa, breakdown.GPA)
			require.Equal(t, tc.letter, breakdown.LetterGrade)
		})
	}
}

func TestComputeGradeRoundsToTwoDecimals(t *testing.T) {
	breakdown, err := ComputeGrade(1, 3)
	require.NoError(t, err)
	require.Equal(t, 33.33, breakdown.Percentage)
	require.Equal(t, "D", breakdown.LetterGrade)

	breakdown, err = ComputeGrade(2, 3)
	require.NoError(t, err)
	require.Equal(t, 66.67, breakdown.Percentage)
	require.Equal(t, "B", breakdown.LetterGrade)
}

func TestComputeGradeRejectsNonPositiveTotal(t *testing.T) {
	_, err := ComputeGrade(50, 0)
	require.ErrorIs(t, err, ErrInvalidTotalMarks)

	_, err = ComputeGrade(50, -10)
	require.ErrorIs(t, err, ErrInvalidTotalMarks)
}

func TestComputeGradeMonotonicInMarks(t *testing.T) {
	previous := -1.0
	for marks := 0; marks <= 100; marks++ {
		breakdown, err := ComputeGrade(float64(marks), 100)
		require.NoError(t, err)
		require.GreaterOrEqual(t, breakdown.Percentage, previous)
		previous = breakdown.Percentage
	}
}
