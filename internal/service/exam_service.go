package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
)

// ErrPassingExceedsTotal indicates an exam whose passing marks surpass its
// total marks.
var ErrPassingExceedsTotal = errors.New("passing marks exceed total marks")

// ExamService manages the exam schedule.
type ExamService interface {
	List(ctx context.Context, filter repository.ExamFilter) ([]dto.ExamResponse, error)
	Get(ctx context.Context, id uint) (dto.ExamResponse, error)
	Create(ctx context.Context, payload dto.ExamCreateRequest, actor ActivityActor) (dto.ExamResponse, error)
	Update(ctx context.Context, id uint, payload dto.ExamUpdateRequest, actor ActivityActor) (dto.ExamResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

type examService struct {
	repo      repository.ExamRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewExamService constructs the exam service.
func NewExamService(repo repository.ExamRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ExamService {
	return &examService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		logger:    logger.With().Str("component", "exam_service").Logger(),
	}
}

func (s *examService) List(ctx context.Context, filter repository.ExamFilter) ([]dto.ExamResponse, error) {
	exams, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewExamResponseSlice(exams), nil
}

func (s *examService) Get(ctx context.Context, id uint) (dto.ExamResponse, error) {
	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}

	return dto.NewExamResponse(exam), nil
}

func (s *examService) Create(ctx context.Context, payload dto.ExamCreateRequest, actor ActivityActor) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	if payload.PassingMarks > payload.TotalMarks {
		return dto.ExamResponse{}, ErrPassingExceedsTotal
	}

	date, err := time.Parse(time.RFC3339, payload.Date)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	status := payload.Status
	if status == "" {
		status = models.ExamStatusUpcoming
	}

	exam := models.Exam{
		Subject:         strings.TrimSpace(payload.Subject),
		Class:           strings.TrimSpace(payload.Class),
		Section:         strings.TrimSpace(payload.Section),
		Date:            date,
		TotalMarks:      payload.TotalMarks,
		PassingMarks:    payload.PassingMarks,
		DurationMinutes: payload.DurationMinutes,
		Status:          status,
		Semester:        strings.TrimSpace(payload.Semester),
	}

	if err := s.repo.Create(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.record(ctx, actor, "exam.created", exam)

	return dto.NewExamResponse(exam), nil
}

func (s *examService) Update(ctx context.Context, id uint, payload dto.ExamUpdateRequest, actor ActivityActor) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}

	if payload.Subject != nil {
		exam.Subject = strings.TrimSpace(*payload.Subject)
	}
	if payload.Section != nil {
		exam.Section = strings.TrimSpace(*payload.Section)
	}
	if payload.Date != nil {
		date, err := time.Parse(time.RFC3339, *payload.Date)
		if err != nil {
			return dto.ExamResponse{}, err
		}
		exam.Date = date
	}
	if payload.TotalMarks != nil {
		exam.TotalMarks = *payload.TotalMarks
	}
	if payload.PassingMarks != nil {
		exam.PassingMarks = *payload.PassingMarks
	}
	if payload.DurationMinutes != nil {
		exam.DurationMinutes = *payload.DurationMinutes
	}
	if payload.Status != nil {
		exam.Status = *payload.Status
	}
	if payload.Semester != nil {
		exam.Semester = strings.TrimSpace(*payload.Semester)
	}

	if exam.PassingMarks > exam.TotalMarks {
		return dto.ExamResponse{}, ErrPassingExceedsTotal
	}

	if err := s.repo.Update(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.record(ctx, actor, "exam.updated", exam)

	return dto.NewExamResponse(exam), nil
}

func (s *examService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, actor, "exam.deleted", exam)

	return nil
}

func (s *examService) record(ctx context.Context, actor ActivityActor, action string, exam models.Exam) {
	if s.activity == nil {
		return
	}
	examID := exam.ID
	_, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "exam",
		EntityID:   &examID,
		Metadata: map[string]interface{}{
			"subject": exam.Subject,
			"class":   exam.Class,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("exam_id", examID).Msg("failed to record exam activity")
	}
}
