package dto

import (
	"time"

	"github.com/edverse/campus-api/internal/models"
)

// GradeCreateRequest describes the payload for entering a single grade.
type GradeCreateRequest struct {
	ExamID        uint    `json:"exam_id" validate:"required"`
	StudentID     uint    `json:"student_id" validate:"required"`
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
	Remarks       string  `json:"remarks" validate:"omitempty,max=1000"`
}

// GradeUpdateRequest describes the payload for re-entering marks on an
// existing grade. Exam and student are immutable once the grade exists.
type GradeUpdateRequest struct {
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
	Remarks       *string `json:"remarks" validate:"omitempty,max=1000"`
}

// GradeResponse is the serialized grade representation.
type GradeResponse struct {
	ID            uint      `json:"id"`
	StudentID     uint      `json:"student_id"`
	StudentName   string    `json:"student_name"`
	ExamID        uint      `json:"exam_id"`
	Subject       string    `json:"subject"`
	MarksObtained float64   `json:"marks_obtained"`
	TotalMarks    int       `json:"total_marks"`
	Percentage    float64   `json:"percentage"`
	GPA           float64   `json:"gpa"`
	LetterGrade   string    `json:"letter_grade"`
	Remarks       string    `json:"remarks"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewGradeResponse converts a model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		ID:            model.ID,
		StudentID:     model.StudentID,
		StudentName:   model.Student.Name,
		ExamID:        model.ExamID,
		Subject:       model.Exam.Subject,
		MarksObtained: model.MarksObtained,
		TotalMarks:    model.Exam.TotalMarks,
		Percentage:    model.Percentage,
		GPA:           model.GPA,
		LetterGrade:   model.LetterGrade,
		Remarks:       model.Remarks,
		Date:          model.Date,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewGradeResponseSlice converts a slice of models into DTOs.
func NewGradeResponseSlice(grades []models.Grade) []GradeResponse {
	responses := make([]GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewGradeResponse(grade))
	}

	return responses
}
