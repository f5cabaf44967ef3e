package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"officehourlens/internal/services"
)

// respondError maps service error types onto HTTP statuses:
// validation 400, not found 404, invalid transition 409, bad setting 422.
// Anything else is a 500 with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Error(),
		})
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": notFoundErr.Error(),
		})
	}

	var transitionErr *services.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": transitionErr.Error(),
		})
	}

	var configErr *services.ConfigurationError
	if errors.As(err, &configErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": configErr.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
