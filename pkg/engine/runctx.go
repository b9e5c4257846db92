// Package engine implements the dag execution core shared by every
// skill and collector in nerva: a RunContext that carries a
// task's inputs and accumulated artifacts through a bounded-parallel,
// dependency-ordered graph of named work.
package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunContext is the mutable, concurrency-safe bag of state a Dag run
// threads through its nodes. Nodes read Inputs/Artifacts and write
// their own result into Artifacts under their own node name; Outputs
// and Extra are free-form accumulators for values a run wants to
// surface to its caller once finished.
type RunContext struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	mu        sync.RWMutex
	inputs    map[string]any
	artifacts map[string]any
	outputs   map[string]any
	extra     map[string]any
	events    []NodeEvent
}

// NewRunContext allocates a RunContext with a fresh run id and the
// given inputs. A nil inputs map is treated as empty.
func NewRunContext(inputs map[string]any) *RunContext {
	if inputs == nil {
		inputs = map[string]any{}
	}
	return &RunContext{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		inputs:    inputs,
		artifacts: map[string]any{},
		outputs:   map[string]any{},
		extra:     map[string]any{},
	}
}

// Input returns an input value and whether it was present.
func (rc *RunContext) Input(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.inputs[key]
	return v, ok
}

// Inputs returns a copy of the full input map.
func (rc *RunContext) Inputs() map[string]any {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return cloneMap(rc.inputs)
}

// Artifact returns the artifact produced by the named node, if any.
func (rc *RunContext) Artifact(node string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.artifacts[node]
	return v, ok
}

// SetArtifact records the result of a node's execution. Called by the
// Dag runner; safe to call directly from tests.
func (rc *RunContext) SetArtifact(node string, value any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.artifacts[node] = value
}

// Artifacts returns a copy of all recorded artifacts.
func (rc *RunContext) Artifacts() map[string]any {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return cloneMap(rc.artifacts)
}

// SetOutput records a value the run wants to surface to its caller.
func (rc *RunContext) SetOutput(key string, value any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.outputs[key] = value
}

// Output returns an output value and whether it was present.
func (rc *RunContext) Output(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.outputs[key]
	return v, ok
}

// Outputs returns a copy of the full output map.
func (rc *RunContext) Outputs() map[string]any {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return cloneMap(rc.outputs)
}

// SetExtra stashes a scratch value under key, for use between nodes
// that need to coordinate outside the artifact namespace.
func (rc *RunContext) SetExtra(key string, value any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.extra[key] = value
}

// Extra returns a scratch value and whether it was present.
func (rc *RunContext) Extra(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.extra[key]
	return v, ok
}

// recordEvent appends an event to the run's own trace, independent of
// any Observer attached to the Dag.
func (rc *RunContext) recordEvent(e NodeEvent) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.events = append(rc.events, e)
}

// Events returns a copy of every event recorded against this run.
func (rc *RunContext) Events() []NodeEvent {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	out := make([]NodeEvent, len(rc.events))
	copy(out, rc.events)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
