package models

import "time"

// Grade represents the persisted outcome of one student's performance on one
// exam. At most one grade exists per (student, exam) pair; re-entering marks
// updates the existing row instead of creating a duplicate.
type Grade struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StudentID     uint      `gorm:"not null;uniqueIndex:idx_grades_student_exam" json:"student_id"`
	ExamID        uint      `gorm:"not null;uniqueIndex:idx_grades_student_exam" json:"exam_id"`
	MarksObtained float64   `gorm:"not null" json:"marks_obtained"`
	Percentage    float64   `gorm:"not null" json:"percentage"`
	GPA           float64   `gorm:"not null" json:"gpa"`
	LetterGrade   string    `gorm:"size:4;not null" json:"letter_grade"`
	Remarks       string    `gorm:"type:text" json:"remarks"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Student       Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Exam          Exam      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"exam"`
}

// IsPassing reports whether the grade clears the 40 percent pass threshold.
func (g Grade) IsPassing() bool {
	return g.Percentage >= 40
}
