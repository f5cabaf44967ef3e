package handlers

import (
	"github.com/gofiber/fiber/v2"

	"officehourlens/internal/database"
	"officehourlens/internal/seed"
)

// SeedHandler loads demo data on request
type SeedHandler struct {
	db *database.DB
}

// NewSeedHandler creates a new seed handler
func NewSeedHandler(db *database.DB) *SeedHandler {
	return &SeedHandler{db: db}
}

// Handle handles POST /api/seed_sample. Only empty tables are filled.
func (h *SeedHandler) Handle(c *fiber.Ctx) error {
	if err := seed.Apply(h.db, seed.Sample()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
