package handlers

import (
	"time"

	"finledger/internal/models"
	"finledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	categories *service.CategoryService
	logger     *zap.Logger
}

func NewCategoryHandler(categories *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		logger:     logger,
	}
}

type categoryResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IconName        string `json:"icon_name"`
	BackgroundColor string `json:"background_color"`
	LastUpdated     string `json:"last_updated"`
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	categories, err := h.categories.List(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list categories")
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, newCategoryResponse(cat))
	}
	return c.JSON(out)
}

// Catalog returns the predefined labels that auto-create categories.
func (h *CategoryHandler) Catalog(c *fiber.Ctx) error {
	return c.JSON(service.PredefinedCategories())
}

func newCategoryResponse(cat models.Category) categoryResponse {
	return categoryResponse{
		ID:              cat.ID.String(),
		Name:            cat.Name,
		IconName:        cat.IconName,
		BackgroundColor: cat.BackgroundColor,
		LastUpdated:     cat.LastUpdated.Format(time.RFC3339),
	}
}
