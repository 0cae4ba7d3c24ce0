package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edverse/campus-api/internal/config"
	"github.com/edverse/campus-api/internal/handler"
	"github.com/edverse/campus-api/internal/middleware"
	"github.com/edverse/campus-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ExamHandler      *handler.ExamHandler
	StudentHandler   *handler.StudentHandler
	GradeHandler     *handler.GradeHandler
	BulkGradeHandler *handler.BulkGradeHandler
	ReportHandler    *handler.ReportHandler
	ActivityHandler  *handler.ActivityHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	protected := api.Group("", jwtMiddleware)

	if deps.ExamHandler != nil {
		exams := protected.Group("/exams")
		deps.ExamHandler.Register(exams)

		// exam-scoped grading: roster, grades, prefill, bulk entry
		if deps.BulkGradeHandler != nil {
			deps.BulkGradeHandler.Register(exams, middleware.RateLimit("bulk_grades", 30, time.Minute))
		}
	}

	if deps.StudentHandler != nil {
		students := protected.Group("/students")
		deps.StudentHandler.Register(students)
	}

	if deps.GradeHandler != nil {
		grades := protected.Group("/grades")
		deps.GradeHandler.Register(grades)
	}

	if deps.ReportHandler != nil {
		reports := protected.Group("/reports")
		deps.ReportHandler.Register(reports)
	}

	if deps.ActivityHandler != nil {
		activity := protected.Group("/activity")
		deps.ActivityHandler.Register(activity)
	}
}
