package main

import (
	"context"
	"fmt"
	"path/filepath"

	"nerva/internal/browserdriver"
	"nerva/internal/config"
	"nerva/internal/dailyops"
	"nerva/internal/dispatcher"
	"nerva/internal/knowledge"
	"nerva/internal/llmclient"
	"nerva/internal/logging"
	"nerva/internal/memorystore"
	"nerva/internal/repoquery"
	"nerva/internal/skills"
	"nerva/internal/threadstore"
	"nerva/internal/visionagent"
)

// app bundles every collaborator a subcommand might need, built once
// per invocation from config.
type app struct {
	Config     config.Config
	Dispatcher *dispatcher.Dispatcher
	Memory     *memorystore.Store
	Threads    *threadstore.Store
	closeBrowser func()
}

// buildApp resolves config, wires logging, and constructs a
// Dispatcher with every skill collaborator nerva knows how to build
// locally. Chrome is launched up front (headless unless the caller
// passes headless=false): lookup, research,
// and generic_browser all depend on it, and nerva is a long-lived
// assistant process, not a short-lived script, so the startup cost is
// paid once per run rather than once per command.
func buildApp(ctx context.Context, headless bool) (*app, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logging.Init(parseLevel(cfg.LogLevel), cfg.LogFormat)

	textLLM, visionLLM := llmclient.FromConfig(cfg)

	driver, closeBrowser, err := browserdriver.NewChromeDriver(ctx, headless)
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	visionAgent := visionagent.New(visionLLM, driver)

	memory := memorystore.NewStore()
	threads, err := threadstore.NewStore(filepath.Join(cfg.StateDir, "threads.json"))
	if err != nil {
		closeBrowser()
		return nil, fmt.Errorf("open thread store: %w", err)
	}
	kg := knowledge.NewGraph()

	repoRoot, _ := filepath.Abs(".")
	cycle := dailyops.NewDailyCycleManager(nil, dailyops.Config{
		NotesDir:     filepath.Join(cfg.StateDir, "notes"),
		LogDir:       filepath.Join(cfg.StateDir, "logs"),
		DashboardURL: "http://localhost:8000",
	})
	cycle.LLM = textLLM
	cycle.Memory = memory

	deps := &skills.Deps{
		LLM:       textLLM,
		Vision:    visionAgent,
		DailyOps:  cycle.AsSkillFunc(),
		RepoQuery: repoquery.AsSkillFunc(textLLM, memory, repoRoot),
	}

	d := dispatcher.New(textLLM, deps, memory)
	d.Threads = threads
	d.Knowledge = kg
	d.SetParallelism(int64(cfg.DispatchParallelism))
	cycle.Dispatcher = d

	return &app{
		Config:       cfg,
		Dispatcher:   d,
		Memory:       memory,
		Threads:      threads,
		closeBrowser: closeBrowser,
	}, nil
}

func (a *app) Close() {
	if a.closeBrowser != nil {
		a.closeBrowser()
	}
}
