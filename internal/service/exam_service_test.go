package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
)

func setupExamService(t *testing.T) (*gorm.DB, ExamService) {
	t.Helper()

	db := testDB(t, "exam")
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewExamService(repository.NewExamRepository(db), validate, nil, testLogger())
	return db, svc
}

func TestExamServiceCreate(t *testing.T) {
	_, svc := setupExamService(t)

	exam, err := svc.Create(context.Background(), dto.ExamCreateRequest{
		Subject:      " Biology ",
		Class:        "10",
		Section:      "A",
		Date:         time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		TotalMarks:   100,
		PassingMarks: 40,
		Semester:     "Summer 2025",
	}, ActivityActor{ID: 2, Role: "admin"})
	require.NoError(t, err)

	require.Equal(t, "Biology", exam.Subject)
	require.Equal(t, models.ExamStatusUpcoming, exam.Status)
	require.Equal(t, 100, exam.TotalMarks)
}

func TestExamServiceCreateRejectsPassingOverTotal(t *testing.T) {
	_, svc := setupExamService(t)

	_, err := svc.Create(context.Background(), dto.ExamCreateRequest{
		Subject:      "Biology",
		Class:        "10",
		Date:         time.Now().UTC().Format(time.RFC3339),
		TotalMarks:   50,
		PassingMarks: 60,
	}, ActivityActor{})
	require.ErrorIs(t, err, ErrPassingExceedsTotal)
}

func TestExamServiceUpdateGuardsInvariant(t *testing.T) {
	_, svc := setupExamService(t)

	exam, err := svc.Create(context.Background(), dto.ExamCreateRequest{
		Subject:      "Biology",
		Class:        "10",
		Date:         time.Now().UTC().Format(time.RFC3339),
		TotalMarks:   100,
		PassingMarks: 40,
	}, ActivityActor{})
	require.NoError(t, err)

	lowered := 30
	_, err = svc.Update(context.Background(), exam.ID, dto.ExamUpdateRequest{TotalMarks: &lowered}, ActivityActor{})
	require.ErrorIs(t, err, ErrPassingExceedsTotal)

	status := models.ExamStatusCompleted
	updated, err := svc.Update(context.Background(), exam.ID, dto.ExamUpdateRequest{Status: &status}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, models.ExamStatusCompleted, updated.Status)
}

func TestExamServiceGetUnknown(t *testing.T) {
	_, svc := setupExamService(t)

	_, err := svc.Get(context.Background(), 12345)
	require.ErrorIs(t, err, ErrExamNotFound)
}
