package integration_test

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
	"github.com/edverse/campus-api/internal/middleware"
	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
	"github.com/edverse/campus-api/internal/router"
	"github.com/edverse/campus-api/internal/service"
)

func setupGradingApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:grading_e2e_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Exam{}, &models.Grade{}, &models.ActivityLog{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	examRepo := repository.NewExamRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	reportService := service.NewReportService(gradeRepo, studentRepo, nil, 0, logger)
	examService := service.NewExamService(examRepo, validate, activityService, logger)
	studentService := service.NewStudentService(studentRepo, examRepo, logger)
	gradeService := service.NewGradeService(gradeRepo, examRepo, studentRepo, validate, activityService, reportService, logger)
	bulkService := service.NewBulkGradeService(gradeRepo, examRepo, studentRepo, validate, activityService, reportService, 5*time.Second, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		ExamHandler:      handler.NewExamHandler(examService, logger),
		StudentHandler:   handler.NewStudentHandler(studentService, logger),
		GradeHandler:     handler.NewGradeHandler(gradeService, logger),
		BulkGradeHandler: handler.NewBulkGradeHandler(bulkService, gradeService, studentService, logger),
		ReportHandler:    handler.NewReportHandler(reportService, logger),
		ActivityHandler:  handler.NewActivityHandler(activityService, 50, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(9))
			c.Locals("user_role", "teacher")
			return c.Next()
		},
	})

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestGradingFlow(t *testing.T) {
	app, db := setupGradingApp(t)

	ada := models.Student{Name: "Ada", Email: "ada@example.com", Class: "10", Section: "A", Status: models.StudentStatusActive}
	ben := models.Student{Name: "Ben", Email: "ben@example.com", Class: "10", Section: "A", Status: models.StudentStatusActive}
	require.NoError(t, db.Create(&ada).Error)
	require.NoError(t, db.Create(&ben).Error)

	createResp := doJSON(t, app, "POST", "/api/v1/exams", map[string]interface{}{
		"subject":       "Mathematics",
		"class":         "10",
		"section":       "A",
		"date":          time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		"total_marks":   100,
		"passing_marks": 40,
		"semester":      "Spring 2025",
	})
	require.Equal(t, fiber.StatusCreated, createResp.StatusCode)

	var examBody struct {
		Success bool             `json:"success"`
		Data    dto.ExamResponse `json:"data"`
	}
	decode(t, createResp, &examBody)
	require.True(t, examBody.Success)
	examID := examBody.Data.ID
	examPath := "/api/v1/exams/" + strconv.FormatUint(uint64(examID), 10)

	rosterResp := doJSON(t, app, "GET", examPath+"/roster", nil)
	require.Equal(t, fiber.StatusOK, rosterResp.StatusCode)

	var rosterBody struct {
		Data []dto.StudentResponse `json:"data"`
	}
	decode(t, rosterResp, &rosterBody)
	require.Len(t, rosterBody.Data, 2)

	bulkResp := doJSON(t, app, "POST", examPath+"/grades/bulk", map[string]interface{}{
		"marks": map[string]string{
			strconv.FormatUint(uint64(ada.ID), 10): "85",
			strconv.FormatUint(uint64(ben.ID), 10): "35",
		},
	})
	require.Equal(t, fiber.StatusOK, bulkResp.StatusCode)

	var bulkBody struct {
		Data dto.BulkGradeResponse `json:"data"`
	}
	decode(t, bulkResp, &bulkBody)
	require.Equal(t, 2, bulkBody.Data.Saved)
	require.Equal(t, 2, bulkBody.Data.Inserted)
	require.Empty(t, bulkBody.Data.Skipped)

	summaryResp := doJSON(t, app, "GET", "/api/v1/reports/summary?exam_id="+strconv.FormatUint(uint64(examID), 10), nil)
	require.Equal(t, fiber.StatusOK, summaryResp.StatusCode)

	var summaryBody struct {
		Data dto.GradeSummaryResponse `json:"data"`
	}
	decode(t, summaryResp, &summaryBody)
	require.Equal(t, 2, summaryBody.Data.GradeCount)
	require.InDelta(t, 2.25, summaryBody.Data.AverageGPA, 0.0001)
	require.Equal(t, "50.0", summaryBody.Data.PassRate)
	require.Equal(t, "50.0", summaryBody.Data.ExcellenceRate)

	cardResp := doJSON(t, app, "GET", "/api/v1/reports/students/"+strconv.FormatUint(uint64(ada.ID), 10)+"/report-card?semester=Spring%202025", nil)
	require.Equal(t, fiber.StatusOK, cardResp.StatusCode)

	var cardBody struct {
		Data dto.ReportCardResponse `json:"data"`
	}
	decode(t, cardResp, &cardBody)
	require.Equal(t, "Ada", cardBody.Data.StudentName)
	require.Len(t, cardBody.Data.Subjects, 1)
	require.Equal(t, "A", cardBody.Data.Subjects[0].LetterGrade)
	require.InDelta(t, 85.0, cardBody.Data.OverallPercentage, 0.0001)
	require.Equal(t, "PASS", cardBody.Data.Verdict)

	activityResp := doJSON(t, app, "GET", "/api/v1/activity", nil)
	require.Equal(t, fiber.StatusOK, activityResp.StatusCode)

	var activityBody struct {
		Data []dto.ActivityResponse `json:"data"`
	}
	decode(t, activityResp, &activityBody)
	actions := make([]string, 0, len(activityBody.Data))
	for _, entry := range activityBody.Data {
		actions = append(actions, entry.Action)
	}
	require.Contains(t, actions, "exam.created")
	require.Contains(t, actions, "grades.bulk_entered")
}

func TestGradingFlowCorrectionRoutesToUpdate(t *testing.T) {
	app, db := setupGradingApp(t)

	student := models.Student{Name: "Cleo", Email: "cleo@example.com", Class: "9", Status: models.StudentStatusActive}
	require.NoError(t, db.Create(&student).Error)

	exam := models.Exam{Subject: "Physics", Class: "9", Date: time.Now().UTC(), TotalMarks: 50, PassingMarks: 20, Status: models.ExamStatusCompleted}
	require.NoError(t, db.Create(&exam).Error)

	examPath := "/api/v1/exams/" + strconv.FormatUint(uint64(exam.ID), 10)
	studentKey := strconv.FormatUint(uint64(student.ID), 10)

	first := doJSON(t, app, "POST", examPath+"/grades/bulk", map[string]interface{}{
		"marks": map[string]string{studentKey: "20"},
	})
	require.Equal(t, fiber.StatusOK, first.StatusCode)

	var firstBody struct {
		Data dto.BulkGradeResponse `json:"data"`
	}
	decode(t, first, &firstBody)
	require.Equal(t, 1, firstBody.Data.Inserted)

	second := doJSON(t, app, "POST", examPath+"/grades/bulk", map[string]interface{}{
		"marks": map[string]string{studentKey: "45"},
	})
	require.Equal(t, fiber.StatusOK, second.StatusCode)

	var secondBody struct {
		Data dto.BulkGradeResponse `json:"data"`
	}
	decode(t, second, &secondBody)
	require.Equal(t, 1, secondBody.Data.Updated)
	require.Zero(t, secondBody.Data.Inserted)

	var count int64
	require.NoError(t, db.Model(&models.Grade{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var grade models.Grade
	require.NoError(t, db.First(&grade).Error)
	require.InDelta(t, 45.0, grade.MarksObtained, 0.0001)
	require.InDelta(t, 90.0, grade.Percentage, 0.0001)
	require.Equal(t, "A+", grade.LetterGrade)
}
