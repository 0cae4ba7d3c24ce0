package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
)

const (
	summaryCacheKey = "reports:summary"
	classesCacheKey = "reports:classes"
)

// ReportInvalidator drops cached report aggregates after grade writes.
type ReportInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

// ReportService derives aggregate statistics from grade collections.
type ReportService interface {
	ReportInvalidator
	Summary(ctx context.Context, examID *uint) (dto.GradeSummaryResponse, error)
	ClassPerformance(ctx context.Context) (dto.ClassPerformanceResponse, error)
	ReportCard(ctx context.Context, studentID uint, semester string) (dto.ReportCardResponse, error)
}

type reportService struct {
	grades   repository.GradeRepository
	students repository.StudentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewReportService constructs the reporting service. cache may be nil, in
// which case every call recomputes from the store.
func NewReportService(grades repository.GradeRepository, students repository.StudentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		grades:   grades,
		students: students,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "report_service").Logger(),
		now:      time.Now,
	}
}

// Summarize computes averageGpa, passRate and excellenceRate over a grade
// collection. An empty collection yields zero rates rather than dividing by
// zero. Pass threshold is 40 percent, excellence is 80.
func Summarize(grades []models.Grade) (averageGPA float64, passRate, excellenceRate string) {
	if len(grades) == 0 {
		return 0, "0.0", "0.0"
	}

	var gpaSum float64
	var passed, excellent int
	for _, grade := range grades {
		gpaSum += grade.GPA
		if grade.Percentage >= 40 {
			passed++
		}
		if grade.Percentage >= 80 {
			excellent++
		}
	}

	count := float64(len(grades))
	averageGPA = roundTo(gpaSum/count, 2)
	passRate = formatRate(float64(passed) / count * 100)
	excellenceRate = formatRate(float64(excellent) / count * 100)
	return averageGPA, passRate, excellenceRate
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(roundTo(rate, 1), 'f', 1, 64)
}

// Summary aggregates over all grades, or over one exam's grades when examID
// is set. Only the unfiltered view is cached.
func (s *reportService) Summary(ctx context.Context, examID *uint) (dto.GradeSummaryResponse, error) {
	tracer := otel.Tracer("github.com/edverse/campus-api/internal/service/report")
	ctx, span := tracer.Start(ctx, "reports.summary")
	defer span.End()

	if examID == nil && s.cache != nil {
		cached, err := s.cache.Get(ctx, summaryCacheKey).Result()
		if err == nil {
			var response dto.GradeSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("reports.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read summary cache")
		}
	}

	filter := repository.GradeFilter{}
	if examID != nil {
		filter.ExamID = examID
		span.SetAttributes(attribute.Int64("reports.exam_id", int64(*examID)))
	}

	grades, err := s.grades.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grades_load_failed")
		return dto.GradeSummaryResponse{}, err
	}

	averageGPA, passRate, excellenceRate := Summarize(grades)
	response := dto.GradeSummaryResponse{
		GradeCount:     len(grades),
		AverageGPA:     averageGPA,
		PassRate:       passRate,
		ExcellenceRate: excellenceRate,
		GeneratedAt:    s.now(),
	}

	if examID == nil {
		s.storeCache(ctx, summaryCacheKey, response)
	}

	return response, nil
}

// ClassPerformance aggregates grades per class, using the same grading bands
// as grade entry so the two views never disagree on GPA.
func (s *reportService) ClassPerformance(ctx context.Context) (dto.ClassPerformanceResponse, error) {
	tracer := otel.Tracer("github.com/edverse/campus-api/internal/service/report")
	ctx, span := tracer.Start(ctx, "reports.class_performance")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, classesCacheKey).Result()
		if err == nil {
			var response dto.ClassPerformanceResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("reports.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read class performance cache")
		}
	}

	grades, err := s.grades.List(ctx, repository.GradeFilter{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grades_load_failed")
		return dto.ClassPerformanceResponse{}, err
	}

	byClass := map[string][]models.Grade{}
	for _, grade := range grades {
		byClass[grade.Exam.Class] = append(byClass[grade.Exam.Class], grade)
	}

	classes := make([]string, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	rows := make([]dto.ClassPerformanceRow, 0, len(classes))
	for _, class := range classes {
		classGrades := byClass[class]
		averageGPA, passRate, excellenceRate := Summarize(classGrades)
		rows = append(rows, dto.ClassPerformanceRow{
			Class:          class,
			GradeCount:     len(classGrades),
			AverageGPA:     averageGPA,
			PassRate:       passRate,
			ExcellenceRate: excellenceRate,
		})
	}

	response := dto.ClassPerformanceResponse{
		Classes:     rows,
		GeneratedAt: s.now(),
	}

	s.storeCache(ctx, classesCacheKey, response)
	span.SetAttributes(attribute.Int("reports.class_count", len(rows)))

	return response, nil
}

// ReportCard assembles one row per subject from the student's grades in the
// given semester, plus a grand total. The verdict is FAIL when any subject
// letter is F, otherwise PASS when the overall percentage clears 40.
func (s *reportService) ReportCard(ctx context.Context, studentID uint, semester string) (dto.ReportCardResponse, error) {
	tracer := otel.Tracer("github.com/edverse/campus-api/internal/service/report")
	ctx, span := tracer.Start(ctx, "reports.report_card")
	span.SetAttributes(attribute.Int64("reports.student_id", int64(studentID)))
	defer span.End()

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "student_not_found")
			return dto.ReportCardResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		return dto.ReportCardResponse{}, err
	}

	grades, err := s.grades.List(ctx, repository.GradeFilter{
		StudentID: &studentID,
		Semester:  semester,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grades_load_failed")
		return dto.ReportCardResponse{}, err
	}

	// one row per subject, newest grade wins when a subject was examined twice
	bySubject := map[string]models.Grade{}
	subjects := []string{}
	for i := len(grades) - 1; i >= 0; i-- {
		grade := grades[i]
		if _, seen := bySubject[grade.Exam.Subject]; !seen {
			subjects = append(subjects, grade.Exam.Subject)
		}
		bySubject[grade.Exam.Subject] = grade
	}
	sort.Strings(subjects)

	rows := make([]dto.ReportCardRow, 0, len(subjects))
	var totalObtained, gpaSum float64
	var totalMarks int
	anyFailed := false
	for _, subject := range subjects {
		grade := bySubject[subject]
		rows = append(rows, dto.ReportCardRow{
			Subject:       subject,
			ExamID:        grade.ExamID,
			MarksObtained: grade.MarksObtained,
			TotalMarks:    grade.Exam.TotalMarks,
			Percentage:    grade.Percentage,
			GPA:           grade.GPA,
			LetterGrade:   grade.LetterGrade,
		})
		totalObtained += grade.MarksObtained
		totalMarks += grade.Exam.TotalMarks
		gpaSum += grade.GPA
		if grade.LetterGrade == "F" {
			anyFailed = true
		}
	}

	overallPercentage := 0.0
	overallGPA := 0.0
	if totalMarks > 0 {
		overallPercentage = roundTo(totalObtained/float64(totalMarks)*100, 2)
	}
	if len(rows) > 0 {
		overallGPA = roundTo(gpaSum/float64(len(rows)), 2)
	}

	verdict := "FAIL"
	if !anyFailed && overallPercentage >= 40 {
		verdict = "PASS"
	}

	return dto.ReportCardResponse{
		StudentID:         student.ID,
		StudentName:       student.Name,
		Class:             student.Class,
		Section:           student.Section,
		Semester:          semester,
		Subjects:          rows,
		TotalObtained:     totalObtained,
		TotalMarks:        totalMarks,
		OverallPercentage: overallPercentage,
		OverallGPA:        overallGPA,
		Verdict:           verdict,
		GeneratedAt:       s.now(),
	}, nil
}

// InvalidateReports drops cached aggregates so the next read reflects the
// refreshed grade collection.
func (s *reportService) InvalidateReports(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, summaryCacheKey, classesCacheKey).Err()
}

func (s *reportService) storeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store report cache")
	}
}
