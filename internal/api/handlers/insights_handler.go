package handlers

import (
	"finledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InsightsHandler struct {
	insights *service.InsightsService
	logger   *zap.Logger
}

func NewInsightsHandler(insights *service.InsightsService, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{
		insights: insights,
		logger:   logger,
	}
}

func (h *InsightsHandler) Summary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	summary, err := h.insights.Summary(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to compute insights", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to compute insights")
	}

	return c.JSON(summary)
}
