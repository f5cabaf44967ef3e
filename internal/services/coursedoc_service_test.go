package services

import (
	"errors"
	"strings"
	"testing"

	"officehourlens/internal/models"
)

func TestCourseDocService_AddAndList(t *testing.T) {
	db := setupTestDB(t)
	service := NewCourseDocService(db)

	doc, err := service.Add(models.CreateCourseDocRequest{
		Title:      "HW1: Linear Regression",
		Content:    "Implement gradient descent for linear regression.",
		SourceType: "assignment",
	})
	if err != nil {
		t.Fatalf("Failed to add course doc: %v", err)
	}
	if doc.ID == 0 {
		t.Error("Expected non-zero doc id")
	}

	docs, err := service.List()
	if err != nil {
		t.Fatalf("Failed to list course docs: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected 1 doc, got %d", len(docs))
	}
	if docs[0].Title != "HW1: Linear Regression" {
		t.Errorf("Unexpected title: %s", docs[0].Title)
	}
}

func TestCourseDocService_AddValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewCourseDocService(db)

	cases := []struct {
		name string
		req  models.CreateCourseDocRequest
	}{
		{"missing title", models.CreateCourseDocRequest{Content: "text", SourceType: "slides"}},
		{"missing content", models.CreateCourseDocRequest{Title: "Week 2", SourceType: "slides"}},
		{"missing source type", models.CreateCourseDocRequest{Title: "Week 2", Content: "text"}},
		{"whitespace title", models.CreateCourseDocRequest{Title: "   ", Content: "text", SourceType: "slides"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Add(tc.req)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCourseDocService_Delete(t *testing.T) {
	db := setupTestDB(t)
	service := NewCourseDocService(db)

	doc, err := service.Add(models.CreateCourseDocRequest{
		Title:      "Syllabus",
		Content:    "Grading: 40% homework, 60% exams.",
		SourceType: "syllabus",
	})
	if err != nil {
		t.Fatalf("Failed to add course doc: %v", err)
	}

	if err := service.Delete(doc.ID); err != nil {
		t.Fatalf("Failed to delete course doc: %v", err)
	}

	docs, err := service.List()
	if err != nil {
		t.Fatalf("Failed to list after delete: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expected empty list after delete, got %d docs", len(docs))
	}
}

func TestCourseDocService_DeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	service := NewCourseDocService(db)

	err := service.Delete(9999)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestCourseDocService_Units(t *testing.T) {
	db := setupTestDB(t)
	service := NewCourseDocService(db)

	if _, err := service.Add(models.CreateCourseDocRequest{
		Title:      "Syllabus",
		Content:    "Late homework loses 10% per day.",
		SourceType: "syllabus",
	}); err != nil {
		t.Fatalf("Failed to add course doc: %v", err)
	}

	units, err := service.Units()
	if err != nil {
		t.Fatalf("Failed to build units: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("Expected 1 unit, got %d", len(units))
	}
	if units[0].Label != "Doc: Syllabus" {
		t.Errorf("Expected label 'Doc: Syllabus', got %q", units[0].Label)
	}
	if !strings.Contains(units[0].Body, "Late homework") {
		t.Errorf("Unit body missing doc content: %q", units[0].Body)
	}
}

func TestCourseDocService_AddPDFRejectsGarbage(t *testing.T) {
	db := setupTestDB(t)
	service := NewCourseDocService(db)

	_, err := service.AddPDF("Lecture 3", "slides", []byte("this is not a pdf"))
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError for unreadable PDF, got %v", err)
	}
}
