package handlers

import (
	"github.com/gofiber/fiber/v2"

	"officehourlens/internal/services"
)

// SettingHandler handles settings HTTP requests
type SettingHandler struct {
	settings *services.SettingsService
}

// NewSettingHandler creates a new settings handler
func NewSettingHandler(settings *services.SettingsService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// Get handles GET /api/settings/:key
func (h *SettingHandler) Get(c *fiber.Ctx) error {
	setting, err := h.settings.Get(c.Params("key"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(setting)
}

// Set handles PUT /api/settings/:key. A rejected value leaves the prior
// setting in place.
func (h *SettingHandler) Set(c *fiber.Ctx) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	setting, err := h.settings.Set(c.Params("key"), req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(setting)
}
