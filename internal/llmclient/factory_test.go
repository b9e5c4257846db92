package llmclient

import (
	"testing"

	"nerva/internal/config"
)

func TestFromConfig_NoRouterReturnsDirectClient(t *testing.T) {
	cfg := config.Default()
	cfg.UseRouter = false

	text, vision := FromConfig(cfg)
	if _, ok := text.(*OllamaClient); !ok {
		t.Errorf("expected a direct OllamaClient when router is disabled, got %T", text)
	}
	if _, ok := vision.(*OllamaClient); !ok {
		t.Errorf("expected a direct OllamaClient for vision, got %T", vision)
	}
}

func TestFromConfig_RouterEnabledReturnsFallbackClient(t *testing.T) {
	cfg := config.Default()
	cfg.UseRouter = true
	cfg.RouterURL = "http://router.local:8000"

	text, vision := FromConfig(cfg)
	if _, ok := text.(*FallbackTextLLM); !ok {
		t.Errorf("expected a FallbackTextLLM when router is enabled, got %T", text)
	}
	if _, ok := vision.(*fallbackVisionLLM); !ok {
		t.Errorf("expected a fallbackVisionLLM when router is enabled, got %T", vision)
	}
}
