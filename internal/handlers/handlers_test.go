package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"officehourlens/internal/database"
	"officehourlens/internal/llm"
	"officehourlens/internal/models"
	"officehourlens/internal/services"
)

func setupTestApp(t *testing.T) (*fiber.App, *services.QuestionService, *services.SettingsService) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test_handlers.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	prompts := llm.NewPromptStore()
	hub := services.NewQueueHub()
	settings := services.NewSettingsService(db)
	docs := services.NewCourseDocService(db)
	faq := services.NewFAQService(db, nil, prompts)
	suggestions := services.NewSuggestionService(docs, faq, nil, prompts)
	questions := services.NewQuestionService(db, suggestions, faq, settings, hub)

	app := fiber.New()

	questionHandler := NewQuestionHandler(questions)
	faqHandler := NewFAQHandler(faq)
	settingHandler := NewSettingHandler(settings)
	healthHandler := NewHealthHandler(hub)

	app.Get("/health", healthHandler.Handle)
	api := app.Group("/api")
	api.Post("/questions", questionHandler.Submit)
	api.Get("/questions/:id", questionHandler.Get)
	api.Get("/queue", questionHandler.Queue)
	api.Post("/questions/:id/start", questionHandler.Start)
	api.Post("/questions/:id/resolve", questionHandler.Resolve)
	api.Get("/faq", faqHandler.List)
	api.Get("/settings/:key", settingHandler.Get)
	api.Put("/settings/:key", settingHandler.Set)

	return app, questions, settings
}

func TestHealthEndpoint(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", health["status"])
	}
}

func TestSubmitQuestion(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/api/questions",
		strings.NewReader(`{"student_name":"Dana","question_text":"How do I install numpy?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var submitted models.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if submitted.Status != models.StatusOpen {
		t.Errorf("Expected open status, got %s", submitted.Status)
	}
	if submitted.QueuePosition != 1 {
		t.Errorf("Expected queue position 1, got %d", submitted.QueuePosition)
	}
}

func TestSubmitQuestion_ValidationMapsTo400(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/api/questions",
		strings.NewReader(`{"student_name":"","question_text":"help"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestGetQuestion_MissingMapsTo404(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/questions/9999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestResolve_DoubleResolveMapsTo409(t *testing.T) {
	app, questions, _ := setupTestApp(t)

	submitted, err := questions.Submit(context.Background(), models.CreateQuestionRequest{
		StudentName:  "Dana",
		QuestionText: "Is attendance graded?",
	})
	if err != nil {
		t.Fatalf("Failed to submit question: %v", err)
	}

	resolve := func() int {
		req := httptest.NewRequest("POST", fmt.Sprintf("/api/questions/%d/resolve", submitted.ID),
			strings.NewReader(`{"resolved_answer":"No.","save_to_faq":false}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, 5000)
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := resolve(); code != fiber.StatusOK {
		t.Fatalf("Expected first resolve to return 200, got %d", code)
	}
	if code := resolve(); code != fiber.StatusConflict {
		t.Errorf("Expected second resolve to return 409, got %d", code)
	}
}

func TestSetSetting_BadThresholdMapsTo422(t *testing.T) {
	app, _, settings := setupTestApp(t)

	req := httptest.NewRequest("PUT", "/api/settings/faq_threshold",
		strings.NewReader(`{"value":"1.5"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", resp.StatusCode)
	}

	// Prior value survives the rejected write
	if got := settings.FAQThreshold(); got != models.DefaultFAQThreshold {
		t.Errorf("Expected default threshold after rejected write, got %f", got)
	}
}

func TestQueueEndpoint_OrderAndContents(t *testing.T) {
	app, questions, _ := setupTestApp(t)

	for _, text := range []string{"first", "second"} {
		if _, err := questions.Submit(context.Background(), models.CreateQuestionRequest{
			StudentName:  "Dana",
			QuestionText: text,
		}); err != nil {
			t.Fatalf("Failed to submit %q: %v", text, err)
		}
	}

	req := httptest.NewRequest("GET", "/api/queue", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	var queue models.QueueResponse
	if err := json.NewDecoder(resp.Body).Decode(&queue); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(queue.Questions) != 2 {
		t.Fatalf("Expected 2 queued questions, got %d", len(queue.Questions))
	}
	if queue.Questions[0].QuestionText != "first" {
		t.Errorf("Expected FIFO order, got %q first", queue.Questions[0].QuestionText)
	}
}
