package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
)

// ReconcileResult partitions a batch of entered marks into grades to update,
// grades to insert, and rows that produced no write.
type ReconcileResult struct {
	Updates []models.Grade
	Inserts []models.Grade
	Skipped []dto.SkippedRow
}

// BulkGradeService reconciles and persists many students' marks against one
// exam in a single operation.
type BulkGradeService interface {
	Prefill(ctx context.Context, examID uint) (dto.GradePrefillResponse, error)
	Save(ctx context.Context, examID uint, payload dto.BulkGradeRequest, actor ActivityActor) (dto.BulkGradeResponse, error)
}

type bulkGradeService struct {
	grades       repository.GradeRepository
	exams        repository.ExamRepository
	students     repository.StudentRepository
	validator    *validator.Validate
	activity     ActivityRecorder
	cache        ReportInvalidator
	writeTimeout time.Duration
	logger       zerolog.Logger
}

// NewBulkGradeService constructs the bulk grade entry service. writeTimeout
// bounds the persistence call; zero disables the bound.
func NewBulkGradeService(
	grades repository.GradeRepository,
	exams repository.ExamRepository,
	students repository.StudentRepository,
	validator *validator.Validate,
	activity ActivityRecorder,
	cache ReportInvalidator,
	writeTimeout time.Duration,
	logger zerolog.Logger,
) BulkGradeService {
	return &bulkGradeService{
		grades:       grades,
		exams:        exams,
		students:     students,
		validator:    validator,
		activity:     activity,
		cache:        cache,
		writeTimeout: writeTimeout,
		logger:       logger.With().Str("component", "bulk_grade_service").Logger(),
	}
}

// Prefill returns the exam's stored marks formatted as entry strings, keyed
// by student id. Merging these into the working set means edits against an
// already-graded exam route to updates instead of duplicate inserts.
func (s *bulkGradeService) Prefill(ctx context.Context, examID uint) (dto.GradePrefillResponse, error) {
	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradePrefillResponse{}, ErrExamNotFound
		}
		return dto.GradePrefillResponse{}, err
	}

	grades, err := s.grades.List(ctx, repository.GradeFilter{ExamID: &examID})
	if err != nil {
		return dto.GradePrefillResponse{}, err
	}

	marks := make(map[uint]string, len(grades))
	for _, grade := range grades {
		marks[grade.StudentID] = strconv.FormatFloat(grade.MarksObtained, 'f', -1, 64)
	}

	return dto.GradePrefillResponse{ExamID: examID, Marks: marks}, nil
}

// Reconcile classifies the entered marks into updates and inserts against the
// prior grade state. It is pure and deterministic: the same inputs always
// yield the same partition, so a failed batch can be retried after refreshing
// existing grades.
//
// Rows are dropped, never the whole batch: entries that do not parse as a
// number and marks outside [0, exam.TotalMarks] are reported in Skipped and
// produce no write. Students outside the roster are skipped as well; the
// eligibility filter runs before reconciliation, this is a backstop for stale
// ids in the request.
func Reconcile(exam models.Exam, roster []models.Student, enteredMarks map[uint]string, existing map[uint]uint) (ReconcileResult, error) {
	if exam.TotalMarks <= 0 {
		return ReconcileResult{}, ErrInvalidTotalMarks
	}

	eligible := make(map[uint]struct{}, len(roster))
	for _, student := range roster {
		eligible[student.ID] = struct{}{}
	}

	result := ReconcileResult{}
	for studentID, raw := range enteredMarks {
		if _, ok := eligible[studentID]; !ok {
			result.Skipped = append(result.Skipped, dto.SkippedRow{
				StudentID: studentID,
				Entered:   raw,
				Reason:    "student not on exam roster",
			})
			continue
		}

		marks, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(marks) || math.IsInf(marks, 0) {
			result.Skipped = append(result.Skipped, dto.SkippedRow{
				StudentID: studentID,
				Entered:   raw,
				Reason:    "not a number",
			})
			continue
		}

		if marks < 0 || marks > float64(exam.TotalMarks) {
			result.Skipped = append(result.Skipped, dto.SkippedRow{
				StudentID: studentID,
				Entered:   raw,
				Reason:    fmt.Sprintf("marks must be between 0 and %d", exam.TotalMarks),
			})
			continue
		}

		breakdown, err := ComputeGrade(marks, float64(exam.TotalMarks))
		if err != nil {
			return ReconcileResult{}, err
		}

		grade := models.Grade{
			StudentID:     studentID,
			ExamID:        exam.ID,
			MarksObtained: marks,
			Percentage:    breakdown.Percentage,
			GPA:           breakdown.GPA,
			LetterGrade:   breakdown.LetterGrade,
			Date:          exam.Date,
		}

		if gradeID, ok := existing[studentID]; ok {
			grade.ID = gradeID
			result.Updates = append(result.Updates, grade)
		} else {
			result.Inserts = append(result.Inserts, grade)
		}
	}

	return result, nil
}

// Save runs the full bulk entry cycle: load exam, roster and existing grades,
// reconcile, persist both partitions in one transaction, and report per-row
// skips alongside the write counts. Concurrent edits to the same (student,
// exam) pair are last-write-wins.
func (s *bulkGradeService) Save(ctx context.Context, examID uint, payload dto.BulkGradeRequest, actor ActivityActor) (dto.BulkGradeResponse, error) {
	tracer := otel.Tracer("github.com/edverse/campus-api/internal/service/bulk_grade")
	ctx, span := tracer.Start(ctx, "grades.bulk_save", trace.WithAttributes(
		attribute.Int64("bulk.exam_id", int64(examID)),
		attribute.Int("bulk.entered_rows", len(payload.Marks)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BulkGradeResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "exam_not_found")
			return dto.BulkGradeResponse{}, ErrExamNotFound
		}
		span.RecordError(err)
		return dto.BulkGradeResponse{}, err
	}

	roster, err := s.students.ListRoster(ctx, exam)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "roster_load_failed")
		return dto.BulkGradeResponse{}, err
	}

	existingGrades, err := s.grades.List(ctx, repository.GradeFilter{ExamID: &examID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "existing_grades_load_failed")
		return dto.BulkGradeResponse{}, err
	}

	existing := make(map[uint]uint, len(existingGrades))
	for _, grade := range existingGrades {
		existing[grade.StudentID] = grade.ID
	}

	result, err := Reconcile(exam, roster, payload.Marks, existing)
	if err != nil {
		span.RecordError(err)
		return dto.BulkGradeResponse{}, err
	}

	for _, row := range result.Skipped {
		s.logger.Warn().
			Uint("exam_id", examID).
			Uint("student_id", row.StudentID).
			Str("entered", row.Entered).
			Str("reason", row.Reason).
			Msg("bulk grade row skipped")
	}

	persistCtx := ctx
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}

	if err := s.grades.SaveBatch(persistCtx, result.Updates, result.Inserts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch_persist_failed")
		return dto.BulkGradeResponse{}, err
	}

	s.invalidateReports(ctx)
	s.recordActivity(ctx, actor, exam, result)

	span.SetAttributes(
		attribute.Int("bulk.updated", len(result.Updates)),
		attribute.Int("bulk.inserted", len(result.Inserts)),
		attribute.Int("bulk.skipped", len(result.Skipped)),
	)

	skipped := result.Skipped
	if skipped == nil {
		skipped = []dto.SkippedRow{}
	}

	return dto.BulkGradeResponse{
		ExamID:   examID,
		Saved:    len(result.Updates) + len(result.Inserts),
		Updated:  len(result.Updates),
		Inserted: len(result.Inserts),
		Skipped:  skipped,
	}, nil
}

func (s *bulkGradeService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateReports(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}

func (s *bulkGradeService) recordActivity(ctx context.Context, actor ActivityActor, exam models.Exam, result ReconcileResult) {
	if s.activity == nil {
		return
	}
	examID := exam.ID
	_, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "grades.bulk_entered",
		EntityType: "exam",
		EntityID:   &examID,
		Metadata: map[string]interface{}{
			"subject":  exam.Subject,
			"class":    exam.Class,
			"updated":  len(result.Updates),
			"inserted": len(result.Inserts),
			"skipped":  len(result.Skipped),
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("exam_id", examID).Msg("failed to record bulk grading activity")
	}
}
