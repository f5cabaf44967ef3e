package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"officehourlens/internal/database"
	"officehourlens/internal/models"
	"officehourlens/internal/retrieval"
)

// CourseDocService manages the course document side of the retrieval corpus
type CourseDocService struct {
	db *database.DB
}

// NewCourseDocService creates a new course document service
func NewCourseDocService(db *database.DB) *CourseDocService {
	return &CourseDocService{db: db}
}

// Add stores a new course document
func (s *CourseDocService) Add(req models.CreateCourseDocRequest) (*models.CourseDoc, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, &ValidationError{Field: "content", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.SourceType) == "" {
		return nil, &ValidationError{Field: "source_type", Message: "must not be empty"}
	}

	now := time.Now().UTC()
	result, err := s.db.Exec(
		"INSERT INTO course_docs (title, content, source_type, created_at) VALUES (?, ?, ?, ?)",
		req.Title, req.Content, req.SourceType, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert course doc: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted doc id: %w", err)
	}

	return &models.CourseDoc{
		ID:         id,
		Title:      req.Title,
		Content:    req.Content,
		SourceType: req.SourceType,
		CreatedAt:  now,
	}, nil
}

// AddPDF extracts the text of an uploaded PDF and stores it as a course doc
func (s *CourseDocService) AddPDF(title, sourceType string, pdfBytes []byte) (*models.CourseDoc, error) {
	content, err := extractPDFText(pdfBytes)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("could not read PDF: %v", err)}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "file", Message: "PDF contains no extractable text"}
	}

	return s.Add(models.CreateCourseDocRequest{
		Title:      title,
		Content:    content,
		SourceType: sourceType,
	})
}

// List returns all course documents, earliest first
func (s *CourseDocService) List() ([]models.CourseDoc, error) {
	rows, err := s.db.Query(
		"SELECT id, title, content, source_type, created_at FROM course_docs ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list course docs: %w", err)
	}
	defer rows.Close()

	docs := []models.CourseDoc{}
	for rows.Next() {
		var doc models.CourseDoc
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.SourceType, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course doc: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes a course document
func (s *CourseDocService) Delete(id int64) error {
	result, err := s.db.Exec("DELETE FROM course_docs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete course doc: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Resource: "course doc", ID: id}
	}
	return nil
}

// Units returns all course documents as retrieval units, labelled with their
// title for provenance display.
func (s *CourseDocService) Units() ([]retrieval.Unit, error) {
	docs, err := s.List()
	if err != nil {
		return nil, err
	}

	units := make([]retrieval.Unit, 0, len(docs))
	for _, d := range docs {
		units = append(units, retrieval.Unit{
			ID:    d.ID,
			Label: "Doc: " + d.Title,
			Body:  d.Content,
		})
	}
	return units, nil
}

// extractPDFText pulls plain text out of a PDF byte stream
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if _, err := io.Copy(&b, textReader); err != nil {
		return "", err
	}
	return b.String(), nil
}
