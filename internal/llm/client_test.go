package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected /api/generate, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"response": "Check the syllabus, homework is due Friday."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2", 5*time.Second)

	text, err := client.Generate(context.Background(), "when is homework due?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(text, "Friday") {
		t.Errorf("Unexpected generation result: %q", text)
	}
}

func TestClient_Generate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"response": "too late"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2", 50*time.Millisecond)

	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestClient_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2", time.Second)

	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("Expected error on HTTP 500, got nil")
	}
}

func TestClient_Generate_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2", time.Second)

	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("Expected error on malformed response, got nil")
	}
}

func TestClient_Generate_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "  "}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "llama3.2", time.Second)

	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("Expected error on blank response, got nil")
	}
}

func TestPromptStore_Defaults(t *testing.T) {
	ps := NewPromptStore()

	prompt := ps.SuggestionPrompt("Doc: Syllabus: Homework due Fridays", "when is hw due?")
	if !strings.Contains(prompt, "STUDENT QUESTION") {
		t.Error("Suggestion prompt missing question framing")
	}
	if !strings.Contains(prompt, "when is hw due?") {
		t.Error("Suggestion prompt missing question text")
	}

	name := ps.ClusterNamePrompt([]string{"q1", "q2"})
	if !strings.Contains(name, "- q1") || !strings.Contains(name, "- q2") {
		t.Error("Cluster name prompt missing question bullets")
	}
}

func TestPromptStore_ClusterNamePrompt_LimitsQuestions(t *testing.T) {
	ps := NewPromptStore()
	questions := []string{"a", "b", "c", "d", "e", "f", "g"}

	prompt := ps.ClusterNamePrompt(questions)
	if strings.Contains(prompt, "- f") || strings.Contains(prompt, "- g") {
		t.Error("Cluster name prompt should cap at 5 questions")
	}
}

func TestPromptStore_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := "suggestion: \"CTX %s Q %s\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	ps := NewPromptStore()
	if err := ps.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	prompt := ps.SuggestionPrompt("ctx", "q")
	if prompt != "CTX ctx Q q" {
		t.Errorf("Override not applied: %q", prompt)
	}

	// Missing cluster_name key keeps the default
	name := ps.ClusterNamePrompt([]string{"x"})
	if !strings.Contains(name, "Topic name") {
		t.Error("Expected built-in cluster name template to survive partial override")
	}
}

func TestPromptStore_LoadFile_Broken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("suggestion: \"unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	ps := NewPromptStore()
	before := ps.SuggestionPrompt("c", "q")

	if err := ps.LoadFile(path); err == nil {
		t.Fatal("Expected error for broken YAML")
	}

	if after := ps.SuggestionPrompt("c", "q"); after != before {
		t.Error("Broken file must leave current templates untouched")
	}
}
