// Package llm wraps the external text-generation service (Ollama).
// Callers treat generation as an opaque function that either returns text or
// fails; every call is bounded by a timeout and failures are reported as
// plain errors for the caller to compensate.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GenerateFunc produces text for a prompt or fails. Services depend on this
// type rather than the concrete client so tests can stub generation.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// Client calls the Ollama /api/generate endpoint
type Client struct {
	baseURL string
	model   string
	timeout time.Duration
}

// NewClient creates a generation client for the given Ollama endpoint
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
	}
}

// Generate sends a single non-streaming generation request.
// The call never outlives the client timeout; an expired or cancelled
// context surfaces as an error, not a hang.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqBody := map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewBuffer(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if strings.TrimSpace(result.Response) == "" {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}

	return result.Response, nil
}
