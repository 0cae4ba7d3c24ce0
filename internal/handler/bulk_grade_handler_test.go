package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/config"
	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/handler"
	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
	"github.com/edverse/campus-api/internal/router"
	"github.com/edverse/campus-api/internal/service"
)

func setupGradingApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:grading_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Exam{}, &models.Grade{}, &models.ActivityLog{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	examRepo := repository.NewExamRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	gradeService := service.NewGradeService(gradeRepo, examRepo, studentRepo, validate, nil, nil, logger)
	bulkService := service.NewBulkGradeService(gradeRepo, examRepo, studentRepo, validate, nil, nil, 5*time.Second, logger)
	studentService := service.NewStudentService(studentRepo, examRepo, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		GradeHandler:     handler.NewGradeHandler(gradeService, logger),
		BulkGradeHandler: handler.NewBulkGradeHandler(bulkService, gradeService, studentService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", "teacher")
			return c.Next()
		},
	})

	return app, db
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestBulkGradeHandlerSaveAndPrefill(t *testing.T) {
	app, db := setupGradingApp(t)

	exam := models.Exam{
		Subject:      "Mathematics",
		Class:        "10",
		Date:         time.Now().UTC(),
		TotalMarks:   100,
		PassingMarks: 40,
		Status:       models.ExamStatusCompleted,
	}
	require.NoError(t, db.Create(&exam).Error)

	alice := models.Student{Name: "Alice", Email: "alice@example.com", Class: "10", Section: "A", Status: models.StudentStatusActive}
	bob := models.Student{Name: "Bob", Email: "bob@example.com", Class: "10", Section: "B", Status: models.StudentStatusActive}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	payload := map[string]interface{}{
		"marks": map[string]string{
			strconv.FormatUint(uint64(alice.ID), 10): "92",
			strconv.FormatUint(uint64(bob.ID), 10):   "120",
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	examPath := "/api/v1/exams/" + strconv.FormatUint(uint64(exam.ID), 10)
	req := httptest.NewRequest("POST", examPath+"/grades/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var saveResp struct {
		Success bool                  `json:"success"`
		Data    dto.BulkGradeResponse `json:"data"`
		Message string                `json:"message"`
	}
	decodeResponse(t, resp, &saveResp)
	require.True(t, saveResp.Success)
	require.Equal(t, "grades saved", saveResp.Message)
	require.Equal(t, 1, saveResp.Data.Saved)
	require.Equal(t, 1, saveResp.Data.Inserted)
	require.Zero(t, saveResp.Data.Updated)
	require.Len(t, saveResp.Data.Skipped, 1)
	require.Equal(t, bob.ID, saveResp.Data.Skipped[0].StudentID)

	prefillReq := httptest.NewRequest("GET", examPath+"/grades/prefill", nil)
	prefillResp, err := app.Test(prefillReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, prefillResp.StatusCode)

	var prefillBody struct {
		Success bool                     `json:"success"`
		Data    dto.GradePrefillResponse `json:"data"`
	}
	decodeResponse(t, prefillResp, &prefillBody)
	require.True(t, prefillBody.Success)
	require.Equal(t, "92", prefillBody.Data.Marks[alice.ID])

	listReq := httptest.NewRequest("GET", examPath+"/grades", nil)
	listResp, err := app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var listBody struct {
		Success bool                `json:"success"`
		Data    []dto.GradeResponse `json:"data"`
	}
	decodeResponse(t, listResp, &listBody)
	require.Len(t, listBody.Data, 1)
	require.Equal(t, "A+", listBody.Data[0].LetterGrade)
	require.Equal(t, 4.0, listBody.Data[0].GPA)
}

func TestBulkGradeHandlerUnknownExam(t *testing.T) {
	app, _ := setupGradingApp(t)

	body, err := json.Marshal(map[string]interface{}{"marks": map[string]string{"1": "50"}})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/exams/999/grades/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestBulkGradeHandlerEmptyPayload(t *testing.T) {
	app, db := setupGradingApp(t)

	exam := models.Exam{Subject: "Physics", Class: "9", Date: time.Now().UTC(), TotalMarks: 50, PassingMarks: 20}
	require.NoError(t, db.Create(&exam).Error)

	body, err := json.Marshal(map[string]interface{}{"marks": map[string]string{}})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/exams/"+strconv.FormatUint(uint64(exam.ID), 10)+"/grades/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
