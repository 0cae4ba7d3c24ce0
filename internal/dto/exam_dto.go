package dto

import (
	"time"

	"github.com/edverse/campus-api/internal/models"
)

// ExamCreateRequest describes the payload for scheduling a new exam.
type ExamCreateRequest struct {
	Subject         string `json:"subject" validate:"required,min=2"`
	Class           string `json:"class" validate:"required"`
	Section         string `json:"section"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	TotalMarks      int    `json:"total_marks" validate:"required,gt=0"`
	PassingMarks    int    `json:"passing_marks" validate:"gte=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
	Status          string `json:"status" validate:"omitempty,oneof=upcoming ongoing completed"`
	Semester        string `json:"semester"`
}

// ExamUpdateRequest describes the payload for updating an exam.
type ExamUpdateRequest struct {
	Subject         *string `json:"subject" validate:"omitempty,min=2"`
	Section         *string `json:"section"`
	Date            *string `json:"date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	TotalMarks      *int    `json:"total_marks" validate:"omitempty,gt=0"`
	PassingMarks    *int    `json:"passing_marks" validate:"omitempty,gte=0"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0"`
	Status          *string `json:"status" validate:"omitempty,oneof=upcoming ongoing completed"`
	Semester        *string `json:"semester"`
}

// ExamResponse is the serialized representation returned to API clients.
type ExamResponse struct {
	ID              uint      `json:"id"`
	Subject         string    `json:"subject"`
	Class           string    `json:"class"`
	Section         string    `json:"section"`
	Date            time.Time `json:"date"`
	TotalMarks      int       `json:"total_marks"`
	PassingMarks    int       `json:"passing_marks"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Semester        string    `json:"semester"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewExamResponse converts a model into a DTO.
func NewExamResponse(model models.Exam) ExamResponse {
	return ExamResponse{
		ID:              model.ID,
		Subject:         model.Subject,
		Class:           model.Class,
		Section:         model.Section,
		Date:            model.Date,
		TotalMarks:      model.TotalMarks,
		PassingMarks:    model.PassingMarks,
		DurationMinutes: model.DurationMinutes,
		Status:          model.Status,
		Semester:        model.Semester,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewExamResponseSlice converts a slice of models into DTOs.
func NewExamResponseSlice(exams []models.Exam) []ExamResponse {
	responses := make([]ExamResponse, 0, len(exams))
	for _, exam := range exams {
		responses = append(responses, NewExamResponse(exam))
	}

	return responses
}
