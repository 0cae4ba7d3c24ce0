package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
)

func TestSummarizeEmptySet(t *testing.T) {
	averageGPA, passRate, excellenceRate := Summarize(nil)
	require.Equal(t, 0.0, averageGPA)
	require.Equal(t, "0.0", passRate)
	require.Equal(t, "0.0", excellenceRate)
}

func TestSummarizeRates(t *testing.T) {
	grades := []models.Grade{
		{GPA: 4.0, Percentage: 95},
		{GPA: 3.5, Percentage: 85},
		{GPA: 1.5, Percentage: 45},
		{GPA: 0.0, Percentage: 20},
	}

	averageGPA, passRate, excellenceRate := Summarize(grades)
	require.Equal(t, 2.25, averageGPA)
	require.Equal(t, "75.0", passRate)
	require.Equal(t, "50.0", excellenceRate)
}

func setupReportService(t *testing.T, withCache bool) (*gorm.DB, ReportService) {
	t.Helper()

	db := testDB(t, "report")

	var cache *redis.Client
	if withCache {
		server, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(server.Close)

		cache = redis.NewClient(&redis.Options{Addr: server.Addr()})
		t.Cleanup(func() { _ = cache.Close() })
	}

	gradeRepo := repository.NewGradeRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	svc := NewReportService(gradeRepo, studentRepo, cache, time.Minute, testLogger())
	return db, svc
}

func seedReportFixtures(t *testing.T, db *gorm.DB) (models.Student, []models.Exam) {
	t.Helper()

	student := models.Student{Name: "Asha", Email: "asha@school.test", Class: "10", Section: "A", Status: models.StudentStatusActive}
	require.NoError(t, db.Create(&student).Error)

	exams := []models.Exam{
		{Subject: "Mathematics", Class: "10", Date: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC), TotalMarks: 100, PassingMarks: 40, Status: models.ExamStatusCompleted, Semester: "Spring 2025"},
		{Subject: "Physics", Class: "10", Date: time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC), TotalMarks: 100, PassingMarks: 40, Status: models.ExamStatusCompleted, Semester: "Spring 2025"},
		{Subject: "History", Class: "10", Date: time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC), TotalMarks: 50, PassingMarks: 20, Status: models.ExamStatusCompleted, Semester: "Spring 2025"},
	}
	require.NoError(t, db.Create(&exams).Error)

	return student, exams
}

func createGrade(t *testing.T, db *gorm.DB, student models.Student, exam models.Exam, marks float64) {
	t.Helper()

	breakdown, err := ComputeGrade(marks, float64(exam.TotalMarks))
	require.NoError(t, err)

	grade := models.Grade{
		StudentID:     student.ID,
		ExamID:        exam.ID,
		MarksObtained: marks,
		Percentage:    breakdown.Percentage,
		GPA:           breakdown.GPA,
		LetterGrade:   breakdown.LetterGrade,
		Date:          exam.Date,
	}
	require.NoError(t, db.Create(&grade).Error)
}

func TestReportServiceSummaryCaching(t *testing.T) {
	db, svc := setupReportService(t, true)
	student, exams := seedReportFixtures(t, db)

	createGrade(t, db, student, exams[0], 90)
	createGrade(t, db, student, exams[1], 30)

	summary, err := svc.Summary(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.Equal(t, 2, summary.GradeCount)
	require.Equal(t, 2.0, summary.AverageGPA)
	require.Equal(t, "50.0", summary.PassRate)
	require.Equal(t, "50.0", summary.ExcellenceRate)

	cached, err := svc.Summary(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, summary.GradeCount, cached.GradeCount)

	// grade writes invalidate the cache
	require.NoError(t, svc.InvalidateReports(context.Background()))
	fresh, err := svc.Summary(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
}

func TestReportServiceSummaryFilteredByExam(t *testing.T) {
	db, svc := setupReportService(t, false)
	student, exams := seedReportFixtures(t, db)

	createGrade(t, db, student, exams[0], 90)
	createGrade(t, db, student, exams[1], 30)

	examID := exams[0].ID
	summary, err := svc.Summary(context.Background(), &examID)
	require.NoError(t, err)
	require.Equal(t, 1, summary.GradeCount)
	require.Equal(t, 4.0, summary.AverageGPA)
	require.Equal(t, "100.0", summary.PassRate)
}

func TestReportServiceClassPerformanceUsesCanonicalBands(t *testing.T) {
	db, svc := setupReportService(t, false)
	student, exams := seedReportFixtures(t, db)

	other := models.Student{Name: "Ravi", Email: "ravi@school.test", Class: "9", Status: models.StudentStatusActive}
	require.NoError(t, db.Create(&other).Error)
	exam9 := models.Exam{Subject: "Mathematics", Class: "9", Date: time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC), TotalMarks: 100, PassingMarks: 40, Status: models.ExamStatusCompleted, Semester: "Spring 2025"}
	require.NoError(t, db.Create(&exam9).Error)

	createGrade(t, db, student, exams[0], 36) // 36% sits in the D band
	createGrade(t, db, other, exam9, 80)

	performance, err := svc.ClassPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, performance.Classes, 2)

	require.Equal(t, "10", performance.Classes[0].Class)
	require.Equal(t, 1.0, performance.Classes[0].AverageGPA)
	require.Equal(t, "0.0", performance.Classes[0].PassRate)

	require.Equal(t, "9", performance.Classes[1].Class)
	require.Equal(t, 3.5, performance.Classes[1].AverageGPA)
	require.Equal(t, "100.0", performance.Classes[1].PassRate)
}

func TestReportServiceReportCard(t *testing.T) {
	db, svc := setupReportService(t, false)
	student, exams := seedReportFixtures(t, db)

	createGrade(t, db, student, exams[0], 85) // Mathematics, 85%
	createGrade(t, db, student, exams[1], 58) // Physics, 58%
	createGrade(t, db, student, exams[2], 20) // History, 40% of 50

	card, err := svc.ReportCard(context.Background(), student.ID, "Spring 2025")
	require.NoError(t, err)

	require.Equal(t, student.ID, card.StudentID)
	require.Len(t, card.Subjects, 3)
	require.Equal(t, []string{"History", "Mathematics", "Physics"}, []string{
		card.Subjects[0].Subject, card.Subjects[1].Subject, card.Subjects[2].Subject,
	})

	require.Equal(t, 163.0, card.TotalObtained)
	require.Equal(t, 250, card.TotalMarks)
	require.Equal(t, 65.2, card.OverallPercentage)
	require.Equal(t, "PASS", card.Verdict)
}

func TestReportServiceReportCardFailOnAnyF(t *testing.T) {
	db, svc := setupReportService(t, false)
	student, exams := seedReportFixtures(t, db)

	createGrade(t, db, student, exams[0], 95)
	createGrade(t, db, student, exams[1], 10) // F drags the verdict down despite high overall

	card, err := svc.ReportCard(context.Background(), student.ID, "Spring 2025")
	require.NoError(t, err)
	require.Equal(t, 52.5, card.OverallPercentage)
	require.Equal(t, "FAIL", card.Verdict)
}

func TestReportServiceReportCardUnknownStudent(t *testing.T) {
	_, svc := setupReportService(t, false)

	_, err := svc.ReportCard(context.Background(), 999, "Spring 2025")
	require.ErrorIs(t, err, ErrStudentNotFound)
}
