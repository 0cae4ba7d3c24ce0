package models

import "time"

// Exam represents a scheduled assessment scoped to a class and optionally a section.
type Exam struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Subject         string    `gorm:"size:128;not null" json:"subject"`
	Class           string    `gorm:"size:64;not null;index" json:"class"`
	Section         string    `gorm:"size:32" json:"section"`
	Date            time.Time `gorm:"not null" json:"date"`
	TotalMarks      int       `gorm:"not null" json:"total_marks"`
	PassingMarks    int       `gorm:"not null" json:"passing_marks"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `gorm:"size:32;not null;default:upcoming" json:"status"`
	Semester        string    `gorm:"size:64" json:"semester"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	// ExamStatusUpcoming indicates the exam has not started yet.
	ExamStatusUpcoming = "upcoming"
	// ExamStatusOngoing indicates the exam is in progress.
	ExamStatusOngoing = "ongoing"
	// ExamStatusCompleted indicates the exam has finished and can be graded.
	ExamStatusCompleted = "completed"
)

// AppliesToSection reports whether the exam covers the given section.
// An exam without a section value covers every section of its class.
func (e Exam) AppliesToSection(section string) bool {
	return e.Section == "" || e.Section == section
}
