package models

import "time"

// Student represents a learner enrolled in a class.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Class     string    `gorm:"size:64;not null;index" json:"class"`
	Section   string    `gorm:"size:32" json:"section"`
	Status    string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// StudentStatusActive indicates the student is currently enrolled.
	StudentStatusActive = "active"
	// StudentStatusInactive indicates the student is enrolled but not attending.
	StudentStatusInactive = "inactive"
	// StudentStatusAlumni indicates the student has graduated.
	StudentStatusAlumni = "alumni"
	// StudentStatusSuspended indicates the student is temporarily barred.
	StudentStatusSuspended = "suspended"
)

// EligibleFor reports whether the student can be graded against the exam:
// active status, matching class, and matching section when the exam is
// section-scoped.
func (s Student) EligibleFor(exam Exam) bool {
	return s.Status == StudentStatusActive && s.Class == exam.Class && exam.AppliesToSection(s.Section)
}
