package handlers

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"officehourlens/internal/models"
	"officehourlens/internal/services"
)

// maxPDFUploadBytes bounds course-doc PDF uploads (20 MB)
const maxPDFUploadBytes = 20 << 20

// CourseDocHandler handles course document HTTP requests
type CourseDocHandler struct {
	docs *services.CourseDocService
}

// NewCourseDocHandler creates a new course document handler
func NewCourseDocHandler(docs *services.CourseDocService) *CourseDocHandler {
	return &CourseDocHandler{docs: docs}
}

// List handles GET /api/course_docs
func (h *CourseDocHandler) List(c *fiber.Ctx) error {
	docs, err := h.docs.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(docs)
}

// Create handles POST /api/course_docs
func (h *CourseDocHandler) Create(c *fiber.Ctx) error {
	var req models.CreateCourseDocRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	doc, err := h.docs.Add(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// CreatePDF handles POST /api/course_docs/pdf (multipart upload).
// The extracted text is stored like any pasted document.
func (h *CourseDocHandler) CreatePDF(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respondError(c, &services.ValidationError{Field: "file", Message: "PDF file is required"})
	}
	if fileHeader.Size > maxPDFUploadBytes {
		return respondError(c, &services.ValidationError{Field: "file", Message: "PDF exceeds 20 MB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, &services.ValidationError{Field: "file", Message: "could not open upload"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, &services.ValidationError{Field: "file", Message: "could not read upload"})
	}

	title := c.FormValue("title", fileHeader.Filename)
	sourceType := c.FormValue("source_type", "slides")

	doc, err := h.docs.AddPDF(title, sourceType, data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// Delete handles DELETE /api/course_docs/:id
func (h *CourseDocHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return respondError(c, &services.ValidationError{Field: "id", Message: "must be an integer"})
	}

	if err := h.docs.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
