// Package config resolves nerva's runtime configuration from the
// environment, with an optional YAML file overlay that sets the same
// Config fields by their yaml keys. Environment variables always win
// over the file, so a
// deployment can ship a checked-in config.yaml and still override a
// single field at the process level.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is nerva's global runtime configuration.
type Config struct {
	// LLM routing.
	UseRouter   bool   `yaml:"use_router"`
	RouterURL   string `yaml:"router_url"`
	LLMNodes    string `yaml:"llm_nodes"`
	LLMModel    string `yaml:"llm_model"`
	VisionModel string `yaml:"vision_model"`

	// Logging.
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Paths.
	StateDir string `yaml:"state_dir"`

	// Metrics / concurrency.
	MetricsAddr         string `yaml:"metrics_addr"`
	DagParallelism      int    `yaml:"dag_parallelism"`
	DispatchParallelism int    `yaml:"dispatch_parallelism"`
}

// Default returns nerva's baseline configuration before any
// environment or file overrides are applied.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		UseRouter:           true,
		RouterURL:           "http://localhost:8000",
		LLMNodes:            "",
		LLMModel:            "qwen3:4b",
		VisionModel:         "qwen3-vl:4b",
		LogLevel:            "info",
		LogFormat:           "text",
		StateDir:            filepath.Join(home, ".nerva"),
		MetricsAddr:         "",
		DagParallelism:      4,
		DispatchParallelism: 4,
	}
}

// Load builds a Config starting from Default, applying a YAML file at
// path (if non-empty and present) as an overlay, then applying
// environment variables over both. A missing file at path is not an
// error - the file overlay is opportunistic.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := envFlag("USE_ROUTER"); ok {
		cfg.UseRouter = v
	}
	if v := os.Getenv("ROUTER_URL"); v != "" {
		cfg.RouterURL = v
	}
	if v := os.Getenv("LLM_NODES"); v != "" {
		cfg.LLMNodes = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("VISION_MODEL"); v != "" {
		cfg.VisionModel = v
	}
	if v := os.Getenv("NERVA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("NERVA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("NERVA_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("NERVA_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v, ok := envInt("NERVA_DAG_PARALLELISM"); ok {
		cfg.DagParallelism = v
	}
	if v, ok := envInt("NERVA_DISPATCH_PARALLELISM"); ok {
		cfg.DispatchParallelism = v
	}
}

// envFlag parses a boolean-ish environment variable ("1", "true",
// "yes", "on", case-insensitive). ok is false when the variable is
// unset.
func envFlag(name string) (value bool, ok bool) {
	raw, present := os.LookupEnv(name)
	if !present {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, true
	default:
		return false, true
	}
}

// envInt parses an integer environment variable, ignoring it (ok =
// false) if unset or unparseable.
func envInt(name string) (value int, ok bool) {
	raw, present := os.LookupEnv(name)
	if !present {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
