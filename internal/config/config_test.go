package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_HasSaneBaseline(t *testing.T) {
	cfg := Default()
	if cfg.LLMModel == "" || cfg.LogLevel != "info" || cfg.DagParallelism != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_NoFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("LLM_MODEL", "llama3.2")
	t.Setenv("NERVA_DAG_PARALLELISM", "8")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLMModel != "llama3.2" {
		t.Errorf("expected env override for LLMModel, got %q", cfg.LLMModel)
	}
	if cfg.DagParallelism != 8 {
		t.Errorf("expected env override for DagParallelism, got %d", cfg.DagParallelism)
	}
}

func TestLoad_FileOverlayThenEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("llm_model: mistral\nlog_format: json\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("LLM_MODEL", "qwen3:4b")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected file overlay for LogFormat, got %q", cfg.LogFormat)
	}
	if cfg.LLMModel != "qwen3:4b" {
		t.Errorf("expected env to win over file for LLMModel, got %q", cfg.LLMModel)
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLMModel != Default().LLMModel {
		t.Errorf("expected defaults when file is missing, got %+v", cfg)
	}
}

func TestEnvFlag_ZeroDisablesRouter(t *testing.T) {
	t.Setenv("USE_ROUTER", "0")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UseRouter {
		t.Errorf("expected USE_ROUTER=0 to disable routing")
	}
}
