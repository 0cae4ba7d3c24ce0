package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edverse/campus-api/internal/dto"
	"github.com/edverse/campus-api/internal/service"
	"github.com/edverse/campus-api/internal/utils"
)

// ActivityHandler exposes the grading audit trail.
type ActivityHandler struct {
	service      service.ActivityService
	defaultLimit int
	logger       zerolog.Logger
}

// NewActivityHandler constructs the handler. defaultLimit caps listings when
// the request does not ask for a specific page size.
func NewActivityHandler(service service.ActivityService, defaultLimit int, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service:      service,
		defaultLimit: defaultLimit,
		logger:       logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches audit trail endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit <= 0 {
		limit = h.defaultLimit
	}

	actorID, err := parseQueryUint(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor_id")
	}

	req := dto.ActivityListRequest{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Limit:      limit,
	}
	if actorID != nil {
		req.ActorID = *actorID
	}

	entries, err := h.service.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity")
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
