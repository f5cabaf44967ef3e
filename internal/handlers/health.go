package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"officehourlens/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	hub *services.QueueHub
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(hub *services.QueueHub) *HealthHandler {
	return &HealthHandler{hub: hub}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"subscribers": h.hub.Count(),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}
