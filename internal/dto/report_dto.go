package dto

import "time"

// GradeSummaryResponse carries aggregate statistics over a grade collection.
// Rates are rendered with one decimal, as percentages.
type GradeSummaryResponse struct {
	GradeCount     int       `json:"grade_count"`
	AverageGPA     float64   `json:"average_gpa"`
	PassRate       string    `json:"pass_rate"`
	ExcellenceRate string    `json:"excellence_rate"`
	GeneratedAt    time.Time `json:"generated_at"`
	CacheHit       bool      `json:"cache_hit,omitempty"`
}

// ClassPerformanceRow aggregates grades for one class.
type ClassPerformanceRow struct {
	Class          string  `json:"class"`
	GradeCount     int     `json:"grade_count"`
	AverageGPA     float64 `json:"average_gpa"`
	PassRate       string  `json:"pass_rate"`
	ExcellenceRate string  `json:"excellence_rate"`
}

// ClassPerformanceResponse lists per-class aggregates.
type ClassPerformanceResponse struct {
	Classes     []ClassPerformanceRow `json:"classes"`
	GeneratedAt time.Time             `json:"generated_at"`
	CacheHit    bool                  `json:"cache_hit,omitempty"`
}

// ReportCardRow is one subject line on a report card.
type ReportCardRow struct {
	Subject       string  `json:"subject"`
	ExamID        uint    `json:"exam_id"`
	MarksObtained float64 `json:"marks_obtained"`
	TotalMarks    int     `json:"total_marks"`
	Percentage    float64 `json:"percentage"`
	GPA           float64 `json:"gpa"`
	LetterGrade   string  `json:"letter_grade"`
}

// ReportCardResponse assembles a student's report card for one exam family
// (same exam name, class and semester across subjects).
type ReportCardResponse struct {
	StudentID         uint            `json:"student_id"`
	StudentName       string          `json:"student_name"`
	Class             string          `json:"class"`
	Section           string          `json:"section"`
	Semester          string          `json:"semester"`
	Subjects          []ReportCardRow `json:"subjects"`
	TotalObtained     float64         `json:"total_obtained"`
	TotalMarks        int             `json:"total_marks"`
	OverallPercentage float64         `json:"overall_percentage"`
	OverallGPA        float64         `json:"overall_gpa"`
	Verdict           string          `json:"verdict"`
	GeneratedAt       time.Time       `json:"generated_at"`
}
