package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edverse/campus-api/internal/service"
	"github.com/edverse/campus-api/internal/utils"
)

// ReportHandler wires aggregate reporting routes.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches reporting endpoints to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/classes", h.classPerformance)
	router.Get("/students/:id/report-card", h.reportCard)
}

func (h *ReportHandler) summary(c *fiber.Ctx) error {
	examID, err := parseQueryUint(c, "exam_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam_id")
	}

	summary, err := h.service.Summary(c.Context(), examID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build grade summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build grade summary")
	}

	return utils.SendSuccess(c, "summary generated", summary)
}

func (h *ReportHandler) classPerformance(c *fiber.Ctx) error {
	performance, err := h.service.ClassPerformance(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build class performance")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build class performance")
	}

	return utils.SendSuccess(c, "class performance generated", performance)
}

func (h *ReportHandler) reportCard(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	card, err := h.service.ReportCard(c.Context(), id, c.Query("semester"))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		h.logger.Error().Err(err).Uint("student_id", id).Msg("failed to build report card")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build report card")
	}

	return utils.SendSuccess(c, "report card generated", card)
}
