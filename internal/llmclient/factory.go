package llmclient

import (
	"context"

	"nerva/internal/config"
)

// FromConfig builds the text and vision clients nerva runs against for
// a given Config: when UseRouter is set, RouterURL is tried first with
// a direct Ollama-style fallback at the default local address so a
// router outage degrades gracefully instead of taking the assistant
// down entirely.
func FromConfig(cfg config.Config) (TextLLM, VisionLLM) {
	textFallback := NewOllamaClient("http://localhost:11434", cfg.LLMModel)
	visionFallback := NewOllamaClient("http://localhost:11434", cfg.VisionModel)

	if !cfg.UseRouter || cfg.RouterURL == "" {
		return textFallback, visionFallback
	}

	router := NewOllamaClient(cfg.RouterURL, cfg.LLMModel)
	visionRouter := NewOllamaClient(cfg.RouterURL, cfg.VisionModel)

	text := &FallbackTextLLM{Primary: router, Secondary: textFallback}
	return text, &fallbackVisionLLM{primary: visionRouter, secondary: visionFallback}
}

type fallbackVisionLLM struct {
	primary   VisionLLM
	secondary VisionLLM
}

func (f *fallbackVisionLLM) AnalyzeScreenshot(ctx context.Context, screenshot []byte, task string) (string, error) {
	answer, err := f.primary.AnalyzeScreenshot(ctx, screenshot, task)
	if err == nil {
		return answer, nil
	}
	httpLog.Warn("primary vision LLM failed, falling back", "error", err)
	return f.secondary.AnalyzeScreenshot(ctx, screenshot, task)
}

func (f *fallbackVisionLLM) AnswerQuestion(ctx context.Context, screenshot []byte, question string) (string, error) {
	answer, err := f.primary.AnswerQuestion(ctx, screenshot, question)
	if err == nil {
		return answer, nil
	}
	httpLog.Warn("primary vision LLM failed, falling back", "error", err)
	return f.secondary.AnswerQuestion(ctx, screenshot, question)
}
