// Package llmclient declares the two external collaborators every
// higher-level nerva component talks to — a text LLM and a vision
// LLM — plus deterministic mocks for tests. Real inference is always
// out of process (a router, Ollama, or similar) and out of scope for
// this module: these interfaces are the entire contract.
package llmclient

import "context"

// TextLLM answers free-form text prompts.
type TextLLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VisionLLM answers questions about an image, used both to decide the
// next browser action and to produce a final answer once a task
// completes.
type VisionLLM interface {
	// AnalyzeScreenshot asks what browser action to take next to make
	// progress on task, given the current screenshot.
	AnalyzeScreenshot(ctx context.Context, screenshot []byte, task string) (string, error)
	// AnswerQuestion asks a free-form question about a screenshot.
	AnswerQuestion(ctx context.Context, screenshot []byte, question string) (string, error)
}
