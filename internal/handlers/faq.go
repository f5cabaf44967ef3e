package handlers

import (
	"github.com/gofiber/fiber/v2"

	"officehourlens/internal/services"
)

// FAQHandler handles FAQ listing and maintenance requests
type FAQHandler struct {
	faq *services.FAQService
}

// NewFAQHandler creates a new FAQ handler
func NewFAQHandler(faq *services.FAQService) *FAQHandler {
	return &FAQHandler{faq: faq}
}

// List handles GET /api/faq — clusters in first-creation order, unclustered
// entries grouped last.
func (h *FAQHandler) List(c *fiber.Ctx) error {
	resp, err := h.faq.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// DeleteAll handles DELETE /api/faq (bulk, irreversible)
func (h *FAQHandler) DeleteAll(c *fiber.Ctx) error {
	if err := h.faq.DeleteAll(); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
