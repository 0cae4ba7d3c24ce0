package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edverse/campus-api/internal/config"
	"github.com/edverse/campus-api/internal/database"
	"github.com/edverse/campus-api/internal/handler"
	"github.com/edverse/campus-api/internal/middleware"
	"github.com/edverse/campus-api/internal/models"
	"github.com/edverse/campus-api/internal/repository"
	"github.com/edverse/campus-api/internal/router"
	"github.com/edverse/campus-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Student{}, &models.Exam{}, &models.Grade{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	examRepo := repository.NewExamRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	reportService := service.NewReportService(gradeRepo, studentRepo, redisClient, cfg.ReportCacheTTL, logger)
	examService := service.NewExamService(examRepo, validate, activityService, logger)
	studentService := service.NewStudentService(studentRepo, examRepo, logger)
	gradeService := service.NewGradeService(gradeRepo, examRepo, studentRepo, validate, activityService, reportService, logger)
	bulkGradeService := service.NewBulkGradeService(gradeRepo, examRepo, studentRepo, validate, activityService, reportService, cfg.WriteTimeout, logger)

	examHandler := handler.NewExamHandler(examService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	gradeHandler := handler.NewGradeHandler(gradeService, logger)
	bulkGradeHandler := handler.NewBulkGradeHandler(bulkGradeService, gradeService, studentService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	activityHandler := handler.NewActivityHandler(activityService, cfg.ActivityLimit, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ExamHandler:      examHandler,
		StudentHandler:   studentHandler,
		GradeHandler:     gradeHandler,
		BulkGradeHandler: bulkGradeHandler,
		ReportHandler:    reportHandler,
		ActivityHandler:  activityHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
