package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/repository"
)

// StudentService resolves students and exam rosters.
type StudentService interface {
	List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	Roster(ctx context.Context, examID uint) ([]dto.StudentResponse, error)
}

type studentService struct {
	students repository.StudentRepository
	exams    repository.ExamRepository
	logger   zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, exams repository.ExamRepository, logger zerolog.Logger) StudentService {
	return &studentService{
		students: students,
		exams:    exams,
		logger:   logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, error) {
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

// Roster returns the students eligible for grading against the exam.
func (s *studentService) Roster(ctx context.Context, examID uint) ([]dto.StudentResponse, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	students, err := s.students.ListRoster(ctx, exam)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}
