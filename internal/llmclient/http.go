package llmclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nerva/internal/logging"
)

var httpLog = logging.New("llmclient")

// OllamaClient talks to an Ollama-compatible endpoint (Ollama itself,
// or a router that speaks the same wire format) over its native
// /api/chat and /api/generate routes. It implements both TextLLM and
// VisionLLM: text goes through /api/chat, vision through /api/generate
// with base64-encoded images, matching how Ollama exposes multimodal
// models.
type OllamaClient struct {
	BaseURL string
	Model   string
	HTTP    *http.Client
}

// NewOllamaClient returns a client with a 5 minute default timeout -
// vision models can take tens of seconds to respond.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		BaseURL: baseURL,
		Model:   model,
		HTTP:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Complete sends prompt as a single user message to /api/chat.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    c.Model,
		Stream:   false,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var resp chatResponse
	if err := c.post(ctx, "/api/chat", reqBody, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// AnalyzeScreenshot asks what action to take next given a screenshot.
func (c *OllamaClient) AnalyzeScreenshot(ctx context.Context, screenshot []byte, task string) (string, error) {
	prompt := fmt.Sprintf("Task: %s\n\nWhat single browser action should be taken next? Respond with ACTION/REASON lines.", task)
	return c.generate(ctx, prompt, screenshot)
}

// AnswerQuestion asks a free-form question about a screenshot.
func (c *OllamaClient) AnswerQuestion(ctx context.Context, screenshot []byte, question string) (string, error) {
	return c.generate(ctx, question, screenshot)
}

func (c *OllamaClient) generate(ctx context.Context, prompt string, image []byte) (string, error) {
	reqBody := generateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
	}
	if len(image) > 0 {
		reqBody.Images = []string{base64.StdEncoding.EncodeToString(image)}
	}

	var resp generateResponse
	if err := c.post(ctx, "/api/generate", reqBody, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("llmclient: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("llmclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("llmclient: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("llmclient: %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("llmclient: decode response from %s: %w", path, err)
	}
	return nil
}

// FallbackTextLLM tries primary first and falls back to secondary on
// any error, matching the router-with-local-fallback shape nerva's
// LLM stack uses when a router is configured but unreachable.
type FallbackTextLLM struct {
	Primary   TextLLM
	Secondary TextLLM
}

func (f *FallbackTextLLM) Complete(ctx context.Context, prompt string) (string, error) {
	answer, err := f.Primary.Complete(ctx, prompt)
	if err == nil {
		return answer, nil
	}
	if f.Secondary == nil {
		return "", err
	}
	httpLog.Warn("primary LLM failed, falling back", "error", err)
	return f.Secondary.Complete(ctx, prompt)
}
