package engine

import (
	"encoding/json"
	"errors"
	"time"
)

type nodeEventJSON struct {
	Type    NodeEventType `json:"type"`
	Node    string        `json:"node,omitempty"`
	Attempt int           `json:"attempt,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type runContextJSON struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
	Inputs     map[string]any `json:"inputs"`
	Artifacts  map[string]any `json:"artifacts"`
	Outputs    map[string]any `json:"outputs"`
	Extra      map[string]any `json:"extra,omitempty"`
	Events     []nodeEventJSON `json:"events,omitempty"`
}

// MarshalJSON renders the full run state, including the event trace.
// Event errors survive as their messages; wrapped error chains do not.
func (rc *RunContext) MarshalJSON() ([]byte, error) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	out := runContextJSON{
		RunID:      rc.RunID,
		StartedAt:  rc.StartedAt,
		FinishedAt: rc.FinishedAt,
		Inputs:     rc.inputs,
		Artifacts:  rc.artifacts,
		Outputs:    rc.outputs,
		Extra:      rc.extra,
	}
	for _, e := range rc.events {
		ev := nodeEventJSON{Type: e.Type, Node: e.Node, Attempt: e.Attempt, Elapsed: e.Elapsed}
		if e.Error != nil {
			ev.Error = e.Error.Error()
		}
		out.Events = append(out.Events, ev)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a run previously rendered by MarshalJSON.
func (rc *RunContext) UnmarshalJSON(data []byte) error {
	var in runContextJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.RunID = in.RunID
	rc.StartedAt = in.StartedAt
	rc.FinishedAt = in.FinishedAt
	rc.inputs = orEmpty(in.Inputs)
	rc.artifacts = orEmpty(in.Artifacts)
	rc.outputs = orEmpty(in.Outputs)
	rc.extra = orEmpty(in.Extra)
	rc.events = nil
	for _, e := range in.Events {
		ev := NodeEvent{Type: e.Type, Node: e.Node, Attempt: e.Attempt, Elapsed: e.Elapsed}
		if e.Error != "" {
			ev.Error = errors.New(e.Error)
		}
		rc.events = append(rc.events, ev)
	}
	return nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
