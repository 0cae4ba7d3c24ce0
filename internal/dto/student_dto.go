package dto

import (
	"time"

	"github.com/edverse/campus-api/internal/models"
)

// StudentResponse is the serialized student representation.
type StudentResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Class     string    `json:"class"`
	Section   string    `json:"section"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Class:     model.Class,
		Section:   model.Section,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
	}
}

// NewStudentResponseSlice converts a slice of models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}

	return responses
}
