package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"nerva/pkg/engine"
)

func TestObserveDispatch_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(DispatchTotal.WithLabelValues("calendar", "ok"))
	ObserveDispatch("calendar", "ok", 10*time.Millisecond)
	after := testutil.ToFloat64(DispatchTotal.WithLabelValues("calendar", "ok"))
	if after != before+1 {
		t.Errorf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestDagObserver_RecordsNodeExit(t *testing.T) {
	obs := NewDagObserver("unit-test-dag")
	before := testutil.ToFloat64(DagNodeExecutions.WithLabelValues("unit-test-dag", "index", "ok"))

	obs.OnEvent(engine.NodeEvent{Type: engine.EventNodeExit, Node: "index", Elapsed: 5 * time.Millisecond})

	after := testutil.ToFloat64(DagNodeExecutions.WithLabelValues("unit-test-dag", "index", "ok"))
	if after != before+1 {
		t.Errorf("expected node execution counter to increment, got %v -> %v", before, after)
	}
}

func TestDagObserver_IgnoresNonExitEvents(t *testing.T) {
	obs := NewDagObserver("unit-test-dag-2")
	before := testutil.ToFloat64(DagNodeExecutions.WithLabelValues("unit-test-dag-2", "index", "ok"))

	obs.OnEvent(engine.NodeEvent{Type: engine.EventNodeEnter, Node: "index"})

	after := testutil.ToFloat64(DagNodeExecutions.WithLabelValues("unit-test-dag-2", "index", "ok"))
	if after != before {
		t.Errorf("expected no change for non-exit event, got %v -> %v", before, after)
	}
}
