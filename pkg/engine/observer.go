package engine

import (
	"log/slog"
	"sync"
	"time"
)

// NodeEventType classifies engine events for filtering and routing.
type NodeEventType string

const (
	EventNodeQueued   NodeEventType = "node_queued"
	EventNodeEnter    NodeEventType = "node_enter"
	EventNodeRetry    NodeEventType = "node_retry"
	EventNodeExit     NodeEventType = "node_exit"
	EventNodeSkipped  NodeEventType = "node_skipped"
	EventRunComplete  NodeEventType = "run_complete"
	EventRunError     NodeEventType = "run_error"
)

// NodeEvent is a single observation from a dag run. Metadata is the
// forward-compatible extension point; new fields go there without
// breaking the struct.
type NodeEvent struct {
	Type     NodeEventType
	Node     string
	Attempt  int
	Elapsed  time.Duration
	Error    error
	Metadata map[string]any
}

// Observer receives events during a dag run. Single-method design (like
// http.Handler) so adding new event types never breaks existing observers.
type Observer interface {
	OnEvent(NodeEvent)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(NodeEvent)

func (f ObserverFunc) OnEvent(e NodeEvent) { f(e) }

// MultiObserver fans out events to multiple observers.
type MultiObserver []Observer

func (m MultiObserver) OnEvent(e NodeEvent) {
	for _, obs := range m {
		obs.OnEvent(e)
	}
}

// LogObserver writes run events as structured slog lines.
type LogObserver struct {
	Logger *slog.Logger
}

func (o *LogObserver) OnEvent(e NodeEvent) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{slog.String("event", string(e.Type))}
	if e.Node != "" {
		attrs = append(attrs, slog.String("node", e.Node))
	}
	if e.Attempt > 0 {
		attrs = append(attrs, slog.Int("attempt", e.Attempt))
	}
	if e.Elapsed > 0 {
		attrs = append(attrs, slog.Duration("elapsed", e.Elapsed))
	}
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}

	if e.Error != nil {
		logger.LogAttrs(nil, slog.LevelWarn, "dag", attrs...)
	} else {
		logger.LogAttrs(nil, slog.LevelInfo, "dag", attrs...)
	}
}

// TraceCollector accumulates run events in memory for post-run analysis.
// Safe for concurrent use.
type TraceCollector struct {
	mu     sync.Mutex
	events []NodeEvent
}

func (t *TraceCollector) OnEvent(e NodeEvent) {
	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()
}

// Events returns a copy of all collected events.
func (t *TraceCollector) Events() []NodeEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]NodeEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Reset clears collected events.
func (t *TraceCollector) Reset() {
	t.mu.Lock()
	t.events = nil
	t.mu.Unlock()
}

// EventsOfType returns only events matching the given type.
func (t *TraceCollector) EventsOfType(typ NodeEventType) []NodeEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []NodeEvent
	for _, e := range t.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// emitEvent is a helper to safely emit an event to a possibly-nil observer.
func emitEvent(obs Observer, e NodeEvent) {
	if obs != nil {
		obs.OnEvent(e)
	}
}
