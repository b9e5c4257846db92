package dailyops

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nerva/internal/dispatcher"
	"nerva/internal/llmclient"
	"nerva/internal/memorystore"
	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

// Config controls where CollectAll looks for local inputs.
type Config struct {
	NotesDir     string
	LogDir       string
	DashboardURL string
}

// DailyCycleManager runs a repeatable ops cycle: gather local
// collectors, then run a fixed sequence of dispatcher commands that
// turn the raw data into digestible summaries.
type DailyCycleManager struct {
	Dispatcher *dispatcher.Dispatcher
	LLM        llmclient.TextLLM
	Memory     *memorystore.Store
	Config     Config
	Interval   time.Duration
	Commands   []string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDailyCycleManager returns a manager with nerva's default hourly
// cadence and command set unless overridden.
func NewDailyCycleManager(d *dispatcher.Dispatcher, cfg Config) *DailyCycleManager {
	return &DailyCycleManager{
		Dispatcher: d,
		Config:     cfg,
		Interval:   time.Hour,
		Commands: []string{
			"Summarize today's calendar",
			"Summarize unread Gmail",
		},
	}
}

// RunCycle collects local state and runs every configured dispatcher
// command once, returning the collected snapshot.
func (m *DailyCycleManager) RunCycle(ctx context.Context) (Snapshot, error) {
	log.Info("starting daily ops cycle")

	snapshot, err := CollectAll(ctx, m.Config.NotesDir, m.Config.LogDir, m.Config.DashboardURL)
	if err != nil {
		return Snapshot{}, err
	}

	for _, command := range m.Commands {
		_, dispatchErr := m.Dispatcher.Dispatch(ctx, command, tasktypes.TaskContext{
			Source: "daily_cycle",
			Meta:   map[string]any{"project": "daily_ops"},
		})
		if dispatchErr != nil {
			log.Warn("daily cycle command failed", "command", command, "error", dispatchErr)
		}
	}

	log.Info("daily ops cycle complete",
		"todos", len(snapshot.TODOs),
		"system_events", len(snapshot.SystemEvents),
		"cluster_reachable", snapshot.ClusterStatus.Reachable,
	)
	return snapshot, nil
}

// Start begins running RunCycle on Interval in a background goroutine,
// immediately on start and then on every tick.
func (m *DailyCycleManager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.loop(loopCtx)
}

// Stop cancels the loop and waits for it to exit.
func (m *DailyCycleManager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *DailyCycleManager) loop(ctx context.Context) {
	defer close(m.done)

	for {
		if _, err := m.RunCycle(ctx); err != nil {
			log.Warn("daily cycle run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.Interval):
		}
	}
}

// RunDag executes one collect -> summarize -> write_memory pipeline
// and returns the run's output payload.
func (m *DailyCycleManager) RunDag(ctx context.Context) (map[string]any, error) {
	dag := BuildDag(m.LLM, m.Memory, m.Config)
	rc := engine.NewRunContext(nil)
	if err := dag.Run(ctx, rc); err != nil {
		return nil, fmt.Errorf("dailyops: run: %w", err)
	}
	payload, _ := rc.Output("payload")
	out, _ := payload.(map[string]any)
	return out, nil
}

// AsSkillFunc adapts RunDag into the func(ctx) (map[string]any,
// error) shape skills.Deps.DailyOps expects.
func (m *DailyCycleManager) AsSkillFunc() func(ctx context.Context) (map[string]any, error) {
	return m.RunDag
}
