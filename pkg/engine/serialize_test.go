package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunContext_JSONRoundTrip(t *testing.T) {
	rc := NewRunContext(map[string]any{"command": "check the weather"})
	rc.SetArtifact("collect", "snapshot text")
	rc.SetOutput("summary", "sunny")
	rc.SetExtra("scratch", "value")
	rc.recordEvent(NodeEvent{Type: EventNodeEnter, Node: "collect"})
	rc.recordEvent(NodeEvent{Type: EventNodeExit, Node: "collect", Attempt: 1})

	data, err := json.Marshal(rc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	restored := &RunContext{}
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if restored.RunID != rc.RunID {
		t.Errorf("run id changed: %q != %q", restored.RunID, rc.RunID)
	}
	if diff := cmp.Diff(rc.Inputs(), restored.Inputs()); diff != "" {
		t.Errorf("inputs diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(rc.Artifacts(), restored.Artifacts()); diff != "" {
		t.Errorf("artifacts diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(rc.Outputs(), restored.Outputs()); diff != "" {
		t.Errorf("outputs diff (-want +got):\n%s", diff)
	}
	if len(restored.Events()) != len(rc.Events()) {
		t.Errorf("event count changed: %d != %d", len(restored.Events()), len(rc.Events()))
	}
}
