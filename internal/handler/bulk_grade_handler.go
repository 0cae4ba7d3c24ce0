package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/service"
	"github.com/edverse/campus-api/internal/utils"
)

// BulkGradeHandler wires exam-scoped grade listing, prefill and bulk entry.
type BulkGradeHandler struct {
	bulk   service.BulkGradeService
	grades service.GradeService
	roster service.StudentService
	logger zerolog.Logger
}

// NewBulkGradeHandler constructs the handler.
func NewBulkGradeHandler(bulk service.BulkGradeService, grades service.GradeService, roster service.StudentService, logger zerolog.Logger) *BulkGradeHandler {
	return &BulkGradeHandler{
		bulk:   bulk,
		grades: grades,
		roster: roster,
		logger: logger.With().Str("component", "bulk_grade_handler").Logger(),
	}
}

// Register attaches exam-scoped grading endpoints to the router group. The
// write limiter applies to the bulk entry route only; nil disables it.
func (h *BulkGradeHandler) Register(router fiber.Router, writeLimit fiber.Handler) {
	router.Get("/:id/roster", h.listRoster)
	router.Get("/:id/grades", h.listGrades)
	router.Get("/:id/grades/prefill", h.prefill)
	if writeLimit != nil {
		router.Post("/:id/grades/bulk", writeLimit, h.bulkSave)
	} else {
		router.Post("/:id/grades/bulk", h.bulkSave)
	}
}

func (h *BulkGradeHandler) listRoster(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	students, err := h.roster.Roster(c.Context(), id)
	if err != nil {
		return h.handleError(c, id, err, "failed to load roster")
	}

	return utils.SendSuccess(c, "roster retrieved", students)
}

func (h *BulkGradeHandler) listGrades(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grades, err := h.grades.ListByExam(c.Context(), id)
	if err != nil {
		return h.handleError(c, id, err, "failed to list grades")
	}

	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *BulkGradeHandler) prefill(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	prefill, err := h.bulk.Prefill(c.Context(), id)
	if err != nil {
		return h.handleError(c, id, err, "failed to prefill marks")
	}

	return utils.SendSuccess(c, "marks prefilled", prefill)
}

func (h *BulkGradeHandler) bulkSave(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.BulkGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.bulk.Save(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.handleError(c, id, err, "failed to save grades")
	}

	return utils.SendSuccess(c, "grades saved", result)
}

func (h *BulkGradeHandler) handleError(c *fiber.Ctx, examID uint, err error, message string) error {
	if errors.Is(err, service.ErrExamNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "exam not found")
	}

	h.logger.Error().Err(err).Uint("exam_id", examID).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
