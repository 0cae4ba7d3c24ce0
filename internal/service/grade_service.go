package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
)

// ErrExamNotFound indicates the referenced exam does not exist.
var ErrExamNotFound = errors.New("exam not found")

// ErrStudentNotFound indicates the referenced student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrStudentNotEligible indicates the student is outside the exam's roster
// (wrong class or section, or not active).
var ErrStudentNotEligible = errors.New("student not eligible for exam")

// ErrMarksExceedTotal indicates entered marks surpass the exam ceiling.
var ErrMarksExceedTotal = errors.New("marks exceed exam total")

// ErrGradeNotFound indicates the referenced grade does not exist.
var ErrGradeNotFound = errors.New("grade not found")

// ErrDuplicateGrade indicates a grade already exists for the (student, exam)
// pair; the update path must be used instead.
var ErrDuplicateGrade = errors.New("grade already exists for student and exam")

// GradeService covers single grade entry and retrieval.
type GradeService interface {
	ListByExam(ctx context.Context, examID uint) ([]dto.GradeResponse, error)
	Create(ctx context.Context, payload dto.GradeCreateRequest, actor ActivityActor) (dto.GradeResponse, error)
	Update(ctx context.Context, gradeID uint, payload dto.GradeUpdateRequest, actor ActivityActor) (dto.GradeResponse, error)
	Delete(ctx context.Context, gradeID uint, actor ActivityActor) error
}

type gradeService struct {
	grades    repository.GradeRepository
	exams     repository.ExamRepository
	students  repository.StudentRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	cache     ReportInvalidator
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGradeService constructs the single grade entry service.
func NewGradeService(
	grades repository.GradeRepository,
	exams repository.ExamRepository,
	students repository.StudentRepository,
	validator *validator.Validate,
	activity ActivityRecorder,
	cache ReportInvalidator,
	logger zerolog.Logger,
) GradeService {
	return &gradeService{
		grades:    grades,
		exams:     exams,
		students:  students,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		cache:     cache,
		logger:    logger.With().Str("component", "grade_service").Logger(),
		now:       time.Now,
	}
}

func (s *gradeService) ListByExam(ctx context.Context, examID uint) ([]dto.GradeResponse, error) {
	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	grades, err := s.grades.List(ctx, repository.GradeFilter{ExamID: &examID})
	if err != nil {
		return nil, err
	}

	return dto.NewGradeResponseSlice(grades), nil
}

func (s *gradeService) Create(ctx context.Context, payload dto.GradeCreateRequest, actor ActivityActor) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/edverse/campus-api/internal/service/grade")
	ctx, span := tracer.Start(ctx, "grade.create")
	span.SetAttributes(
		attribute.Int64("grade.exam_id", int64(payload.ExamID)),
		attribute.Int64("grade.student_id", int64(payload.StudentID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, payload.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "exam_not_found")
			return dto.GradeResponse{}, ErrExamNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	student, err := s.students.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "student_not_found")
			return dto.GradeResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	if !student.EligibleFor(exam) {
		span.SetStatus(codes.Error, "student_not_eligible")
		return dto.GradeResponse{}, ErrStudentNotEligible
	}

	if payload.MarksObtained > float64(exam.TotalMarks) {
		err := fmt.Errorf("%w: maximum is %d", ErrMarksExceedTotal, exam.TotalMarks)
		span.SetStatus(codes.Error, "marks_exceed_total")
		return dto.GradeResponse{}, err
	}

	if _, err := s.grades.GetByStudentAndExam(ctx, payload.StudentID, payload.ExamID); err == nil {
		span.SetStatus(codes.Error, "duplicate_grade")
		return dto.GradeResponse{}, ErrDuplicateGrade
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	breakdown, err := ComputeGrade(payload.MarksObtained, float64(exam.TotalMarks))
	if err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	grade := models.Grade{
		StudentID:     payload.StudentID,
		ExamID:        payload.ExamID,
		MarksObtained: payload.MarksObtained,
		Percentage:    breakdown.Percentage,
		GPA:           breakdown.GPA,
		LetterGrade:   breakdown.LetterGrade,
		Remarks:       s.sanitizer.Sanitize(strings.TrimSpace(payload.Remarks)),
		Date:          exam.Date,
	}

	if err := s.grades.Create(ctx, &grade); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_create_failed")
		return dto.GradeResponse{}, err
	}

	grade.Student = student
	grade.Exam = exam

	s.invalidateReports(ctx)
	s.recordActivity(ctx, actor, "grade.entered", grade, map[string]interface{}{
		"exam_id":    grade.ExamID,
		"student_id": grade.StudentID,
		"marks":      grade.MarksObtained,
	})

	span.SetAttributes(attribute.Float64("grade.percentage", grade.Percentage))

	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) Update(ctx context.Context, gradeID uint, payload dto.GradeUpdateRequest, actor ActivityActor) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/edverse/campus-api/internal/service/grade")
	ctx, span := tracer.Start(ctx, "grade.update")
	span.SetAttributes(attribute.Int64("grade.id", int64(gradeID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	grade, err := s.grades.GetByID(ctx, gradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "grade_not_found")
			return dto.GradeResponse{}, ErrGradeNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	// exam and student are locked on edit, only marks and remarks change
	if payload.MarksObtained > float64(grade.Exam.TotalMarks) {
		err := fmt.Errorf("%w: maximum is %d", ErrMarksExceedTotal, grade.Exam.TotalMarks)
		span.SetStatus(codes.Error, "marks_exceed_total")
		return dto.GradeResponse{}, err
	}

	breakdown, err := ComputeGrade(payload.MarksObtained, float64(grade.Exam.TotalMarks))
	if err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	grade.MarksObtained = payload.MarksObtained
	grade.Percentage = breakdown.Percentage
	grade.GPA = breakdown.GPA
	grade.LetterGrade = breakdown.LetterGrade
	grade.Date = grade.Exam.Date
	if payload.Remarks != nil {
		grade.Remarks = s.sanitizer.Sanitize(strings.TrimSpace(*payload.Remarks))
	}

	if err := s.grades.Update(ctx, &grade); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_update_failed")
		return dto.GradeResponse{}, err
	}

	s.invalidateReports(ctx)
	s.recordActivity(ctx, actor, "grade.re_entered", grade, map[string]interface{}{
		"exam_id":    grade.ExamID,
		"student_id": grade.StudentID,
		"marks":      grade.MarksObtained,
	})

	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) Delete(ctx context.Context, gradeID uint, actor ActivityActor) error {
	grade, err := s.grades.GetByID(ctx, gradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGradeNotFound
		}
		return err
	}

	if err := s.grades.Delete(ctx, gradeID); err != nil {
		return err
	}

	s.invalidateReports(ctx)
	s.recordActivity(ctx, actor, "grade.deleted", grade, map[string]interface{}{
		"exam_id":    grade.ExamID,
		"student_id": grade.StudentID,
	})

	return nil
}

func (s *gradeService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateReports(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}

func (s *gradeService) recordActivity(ctx context.Context, actor ActivityActor, action string, grade models.Grade, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	gradeID := grade.ID
	_, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "grade",
		EntityID:   &gradeID,
		Metadata:   metadata,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("grade_id", gradeID).Msg("failed to record grading activity")
	}
}
