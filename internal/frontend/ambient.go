package frontend

import (
	"context"
	"sync"
	"time"

	"nerva/internal/dispatcher"
	"nerva/internal/tasktypes"
)

// AmbientMonitor periodically dispatches a fixed command in the
// background — the "check my calendar every half hour" style of
// always-on assistant behavior.
type AmbientMonitor struct {
	Dispatcher *dispatcher.Dispatcher
	Interval   time.Duration
	Task       string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAmbientMonitor returns a monitor with nerva's default 30-minute
// interval and calendar-check task unless overridden.
func NewAmbientMonitor(d *dispatcher.Dispatcher) *AmbientMonitor {
	return &AmbientMonitor{
		Dispatcher: d,
		Interval:   30 * time.Minute,
		Task:       "Check my calendar for upcoming meetings",
	}
}

// Start begins the periodic loop in a background goroutine.
func (m *AmbientMonitor) Start(ctx context.Context) {
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
func (m *AmbientMonitor) Stop() {
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

func (m *AmbientMonitor) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info("running scheduled ambient task", "task", m.Task)
			_, err := m.Dispatcher.Dispatch(ctx, m.Task, tasktypes.TaskContext{Source: "ambient"})
			if err != nil {
				log.Warn("ambient task failed", "task", m.Task, "error", err)
			}
		}
	}
}
