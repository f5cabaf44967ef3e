package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"officehourlens/internal/models"
	"officehourlens/internal/services"
)

// QuestionHandler handles question and queue HTTP requests
type QuestionHandler struct {
	questions *services.QuestionService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questions *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// Submit handles POST /api/questions
func (h *QuestionHandler) Submit(c *fiber.Ctx) error {
	var req models.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp, err := h.questions.Submit(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Get handles GET /api/questions/:id
func (h *QuestionHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	question, err := h.questions.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(question)
}

// Delete handles DELETE /api/questions/:id
func (h *QuestionHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.questions.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Queue handles GET /api/queue
func (h *QuestionHandler) Queue(c *fiber.Ctx) error {
	questions, err := h.questions.ListQueue()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.QueueResponse{Questions: questions})
}

// Start handles POST /api/questions/:id/start
func (h *QuestionHandler) Start(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	question, err := h.questions.Start(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(question)
}

// Resolve handles POST /api/questions/:id/resolve
func (h *QuestionHandler) Resolve(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.ResolveQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	question, err := h.questions.Resolve(c.Context(), id, req.ResolvedAnswer, req.SaveToFAQ)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(question)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, &services.ValidationError{Field: "id", Message: "must be an integer"}
	}
	return id, nil
}
