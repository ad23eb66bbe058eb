package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/models"
)

// Health reports liveness and which bundle is being served
func (h *Handler) Health(c *fiber.Ctx) error {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
	}
	if h.store != nil {
		info := h.store.Info()
		resp.Data = models.DataSourceInfo{
			Source:   info.Source,
			Seed:     info.Seed,
			FromYear: info.FromYear,
			ToYear:   info.ToYear,
			LoadedAt: info.LoadedAt,
			Rows:     info.Rows,
		}
	}
	return c.JSON(resp)
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
