package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDag_RunsInDependencyOrder(t *testing.T) {
	var aRan, bRan int32

	d := NewDag("order")
	mustAdd(t, d, DagNode{Name: "a", Func: func(ctx context.Context, rc *RunContext) (any, error) {
		atomic.StoreInt32(&aRan, 1)
		return "a-value", nil
	}})
	mustAdd(t, d, DagNode{Name: "b", Deps: []string{"a"}, Func: func(ctx context.Context, rc *RunContext) (any, error) {
		if atomic.LoadInt32(&aRan) == 0 {
			t.Error("b ran before a")
		}
		atomic.StoreInt32(&bRan, 1)
		v, _ := rc.Artifact("a")
		if v != "a-value" {
			t.Errorf("expected a's artifact visible to b, got %v", v)
		}
		return "b-value", nil
	}})

	rc := NewRunContext(nil)
	if err := d.Run(context.Background(), rc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&bRan) == 0 {
		t.Error("b never ran")
	}
}

func TestDag_SkipsDownstreamOfFailure(t *testing.T) {
	var cRan int32

	d := NewDag("skip")
	mustAdd(t, d, DagNode{Name: "a", Func: func(ctx context.Context, rc *RunContext) (any, error) {
		return nil, errors.New("boom")
	}})
	mustAdd(t, d, DagNode{Name: "b", Deps: []string{"a"}, Func: func(ctx context.Context, rc *RunContext) (any, error) {
		atomic.StoreInt32(&cRan, 1)
		return nil, nil
	}})

	rc := NewRunContext(nil)
	err := d.Run(context.Background(), rc)
	if !errors.Is(err, ErrNodeFailed) {
		t.Fatalf("expected ErrNodeFailed, got %v", err)
	}
	if atomic.LoadInt32(&cRan) != 0 {
		t.Error("b should have been skipped, not run")
	}

	events := rc.Events()
	found := false
	for _, e := range events {
		if e.Type == EventNodeSkipped && e.Node == "b" {
			found = true
		}
	}
	if !found {
		t.Error("expected a node_skipped event for b")
	}
}

func TestDag_RetriesUntilSuccess(t *testing.T) {
	var calls int32

	d := NewDag("retry")
	mustAdd(t, d, DagNode{
		Name:        "flaky",
		RetryPolicy: RetryPolicy{MaxAttempts: 3},
		Func: func(ctx context.Context, rc *RunContext) (any, error) {
			n := atomic.AddInt32(&calls, 1)
			if n < 3 {
				return nil, errors.New("not yet")
			}
			return "ok", nil
		},
	})

	rc := NewRunContext(nil)
	if err := d.Run(context.Background(), rc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestDag_ParallelismBound(t *testing.T) {
	var current, maxSeen int32

	d := NewDag("parallel", WithParallelism(2))
	for _, name := range []string{"a", "b", "c", "d"} {
		mustAdd(t, d, DagNode{Name: name, Func: func(ctx context.Context, rc *RunContext) (any, error) {
			n := atomic.AddInt32(&current, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil, nil
		}})
	}

	rc := NewRunContext(nil)
	if err := d.Run(context.Background(), rc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if maxSeen > 2 {
		t.Errorf("expected at most 2 concurrent nodes, saw %d", maxSeen)
	}
}

func TestDag_ZeroTimeoutFailsWithoutRunningNode(t *testing.T) {
	var ran int32

	d := NewDag("deadline")
	mustAdd(t, d, DagNode{
		Name:    "instant",
		Timeout: TimeoutAfter(0),
		Func: func(ctx context.Context, rc *RunContext) (any, error) {
			atomic.StoreInt32(&ran, 1)
			return nil, nil
		},
	})

	rc := NewRunContext(nil)
	err := d.Run(context.Background(), rc)
	if !errors.Is(err, ErrNodeFailed) {
		t.Fatalf("expected ErrNodeFailed, got %v", err)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Error("node func should not run under an already-expired deadline")
	}

	for _, e := range rc.Events() {
		if e.Type == EventNodeExit && e.Node == "instant" {
			if !errors.Is(e.Error, context.DeadlineExceeded) {
				t.Errorf("expected a deadline error on the exit event, got %v", e.Error)
			}
		}
	}
}

func TestDag_DetectsCycle(t *testing.T) {
	d := NewDag("cycle")
	mustAdd(t, d, DagNode{Name: "a", Deps: []string{"b"}, Func: noop})
	mustAdd(t, d, DagNode{Name: "b", Deps: []string{"a"}, Func: noop})

	rc := NewRunContext(nil)
	err := d.Run(context.Background(), rc)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestDag_MissingDependency(t *testing.T) {
	d := NewDag("missing")
	mustAdd(t, d, DagNode{Name: "a", Deps: []string{"ghost"}, Func: noop})

	rc := NewRunContext(nil)
	err := d.Run(context.Background(), rc)
	if !errors.Is(err, ErrMissingDep) {
		t.Fatalf("expected ErrMissingDep, got %v", err)
	}
}

func TestDag_DuplicateNode(t *testing.T) {
	d := NewDag("dup")
	mustAdd(t, d, DagNode{Name: "a", Func: noop})
	err := d.AddNode(DagNode{Name: "a", Func: noop})
	if !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestDag_CancellationReachesDownstreamNodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDag("cancel")
	mustAdd(t, d, DagNode{Name: "a", Func: func(ctx context.Context, rc *RunContext) (any, error) {
		cancel()
		return nil, nil
	}})
	mustAdd(t, d, DagNode{Name: "b", Deps: []string{"a"}, Func: func(ctx context.Context, rc *RunContext) (any, error) {
		if ctx.Err() == nil {
			t.Error("expected cancelled context to reach downstream node")
		}
		return nil, ctx.Err()
	}})

	rc := NewRunContext(nil)
	_ = d.Run(ctx, rc)
}

func mustAdd(t *testing.T, d *Dag, n DagNode) {
	t.Helper()
	if err := d.AddNode(n); err != nil {
		t.Fatalf("AddNode(%s): %v", n.Name, err)
	}
}

func noop(ctx context.Context, rc *RunContext) (any, error) { return nil, nil }
