package engine

import (
	"context"
	"fmt"
	"time"
)

// NodeStatus is the terminal or in-flight state of a single DagNode
// within one Run.
type NodeStatus string

const (
	StatusPending NodeStatus = "pending"
	StatusRunning NodeStatus = "running"
	StatusOK      NodeStatus = "ok"
	StatusFailed  NodeStatus = "failed"
	StatusSkipped NodeStatus = "skipped"
)

// NodeFunc is the unit of work a DagNode runs. It reads whatever it
// needs from rc (its own deps' artifacts, the run's inputs) and
// returns the value to record as this node's artifact.
type NodeFunc func(ctx context.Context, rc *RunContext) (any, error)

// RetryPolicy controls how many times a failing node is retried before
// it is recorded as failed. A zero-value RetryPolicy runs the node
// exactly once.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// DagNode is one named unit of work plus its dependencies. A nil
// Timeout means no per-node deadline; a zero Timeout is an already
// expired deadline, so the node fails with a timeout without its Func
// ever running.
type DagNode struct {
	Name        string
	Deps        []string
	Func        NodeFunc
	Timeout     *time.Duration
	RetryPolicy RetryPolicy
}

// TimeoutAfter is a convenience for DagNode.Timeout literals.
func TimeoutAfter(d time.Duration) *time.Duration { return &d }

// Dag is a set of DagNodes connected by dependency edges, executed in
// dependency order with bounded parallelism across independent nodes.
type Dag struct {
	name        string
	nodes       map[string]*DagNode
	order       []string
	parallelism int
	observer    Observer
}

// DagOption configures a Dag at construction time.
type DagOption func(*Dag)

// WithParallelism bounds how many ready nodes may run concurrently.
// The default is 4.
func WithParallelism(n int) DagOption {
	return func(d *Dag) {
		if n > 0 {
			d.parallelism = n
		}
	}
}

// WithObserver attaches an Observer that receives every NodeEvent
// emitted during Run.
func WithObserver(o Observer) DagOption {
	return func(d *Dag) { d.observer = o }
}

// NewDag constructs an empty, named Dag.
func NewDag(name string, opts ...DagOption) *Dag {
	d := &Dag{
		name:        name,
		nodes:       map[string]*DagNode{},
		parallelism: 4,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddNode registers a node. Returns ErrDuplicateNode if the name is
// already taken.
func (d *Dag) AddNode(n DagNode) error {
	if n.Name == "" {
		return fmt.Errorf("engine: node name must not be empty")
	}
	if _, exists := d.nodes[n.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.Name)
	}
	node := n
	d.nodes[n.Name] = &node
	d.order = append(d.order, n.Name)
	return nil
}

// Name returns the Dag's name.
func (d *Dag) Name() string { return d.name }

// NodeNames returns node names in the order they were added.
func (d *Dag) NodeNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Dag) validate() error {
	for name, n := range d.nodes {
		for _, dep := range n.Deps {
			if _, ok := d.nodes[dep]; !ok {
				return fmt.Errorf("%w: node %q depends on undefined node %q", ErrMissingDep, name, dep)
			}
		}
	}
	return d.checkAcyclic()
}

// checkAcyclic runs a DFS with temp/perm marks, same structure as the
// Python original's _topological_order cycle check.
func (d *Dag) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	mark := make(map[string]int, len(d.nodes))

	var visit func(name string) error
	visit = func(name string) error {
		switch mark[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: at node %q", ErrCycle, name)
		}
		mark[name] = visiting
		for _, dep := range d.nodes[name].Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		mark[name] = done
		return nil
	}

	for _, name := range d.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

type nodeResult struct {
	name    string
	status  NodeStatus
	err     error
	elapsed time.Duration
}

// Run executes every node in dependency order, running all currently
// ready nodes concurrently up to the Dag's parallelism limit. A node
// whose dependency failed or was skipped is itself skipped rather than
// run. Run returns ErrNodeFailed if any node failed, after every other
// schedulable node has finished (success, failure, skip, or
// cancellation) — the whole run drains rather than aborting the
// instant one node errors.
func (d *Dag) Run(ctx context.Context, rc *RunContext) error {
	if err := d.validate(); err != nil {
		return err
	}
	if len(d.nodes) == 0 {
		return nil
	}

	indegree := make(map[string]int, len(d.nodes))
	dependents := make(map[string][]string, len(d.nodes))
	status := make(map[string]NodeStatus, len(d.nodes))
	for name, n := range d.nodes {
		indegree[name] = len(n.Deps)
		status[name] = StatusPending
		for _, dep := range n.Deps {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	sem := make(chan struct{}, d.parallelism)
	done := make(chan nodeResult, len(d.nodes))
	remaining := len(d.nodes)
	failed := false

	launch := func(name string) {
		status[name] = StatusRunning
		go func() {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				done <- nodeResult{name: name, status: StatusSkipped, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()
			st, err, elapsed := d.execNode(ctx, d.nodes[name], rc)
			done <- nodeResult{name: name, status: st, err: err, elapsed: elapsed}
		}()
	}

	for _, name := range d.order {
		if indegree[name] == 0 {
			launch(name)
		}
	}

	anyDepNotOK := func(name string) bool {
		for _, dep := range d.nodes[name].Deps {
			if status[dep] != StatusOK {
				return true
			}
		}
		return false
	}

	var skipQueue []string
	for remaining > 0 {
		var name string
		var res nodeResult
		if len(skipQueue) > 0 {
			name, skipQueue = skipQueue[0], skipQueue[1:]
			status[name] = StatusSkipped
			remaining--
			emitEvent(d.observer, NodeEvent{Type: EventNodeSkipped, Node: name})
			rc.recordEvent(NodeEvent{Type: EventNodeSkipped, Node: name})
		} else {
			res = <-done
			remaining--
			status[res.name] = res.status
			if res.status == StatusFailed {
				failed = true
			}
			name = res.name
		}

		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				if anyDepNotOK(dep) {
					skipQueue = append(skipQueue, dep)
				} else {
					launch(dep)
				}
			}
		}
	}

	emitEvent(d.observer, NodeEvent{Type: EventRunComplete, Node: d.name, Error: boolErr(failed)})
	if failed {
		return ErrNodeFailed
	}
	return nil
}

func boolErr(failed bool) error {
	if failed {
		return ErrNodeFailed
	}
	return nil
}

// execNode runs a single node with its timeout and retry policy,
// recording Enter/Retry/Exit events against both the Dag's observer
// and the RunContext's own trace.
func (d *Dag) execNode(ctx context.Context, n *DagNode, rc *RunContext) (NodeStatus, error, time.Duration) {
	start := time.Now()
	emitEvent(d.observer, NodeEvent{Type: EventNodeEnter, Node: n.Name})
	rc.recordEvent(NodeEvent{Type: EventNodeEnter, Node: n.Name})

	attempts := n.RetryPolicy.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		nodeCtx := ctx
		var cancel context.CancelFunc
		if n.Timeout != nil {
			nodeCtx, cancel = context.WithTimeout(ctx, *n.Timeout)
		}
		var value any
		err := nodeCtx.Err()
		if err == nil {
			value, err = n.Func(nodeCtx, rc)
		} else {
			err = fmt.Errorf("engine: node %q deadline: %w", n.Name, err)
		}
		if cancel != nil {
			cancel()
		}
		if err == nil {
			rc.SetArtifact(n.Name, value)
			elapsed := time.Since(start)
			emitEvent(d.observer, NodeEvent{Type: EventNodeExit, Node: n.Name, Attempt: attempt, Elapsed: elapsed})
			rc.recordEvent(NodeEvent{Type: EventNodeExit, Node: n.Name, Attempt: attempt, Elapsed: elapsed})
			return StatusOK, nil, elapsed
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			emitEvent(d.observer, NodeEvent{Type: EventNodeRetry, Node: n.Name, Attempt: attempt, Error: err})
			rc.recordEvent(NodeEvent{Type: EventNodeRetry, Node: n.Name, Attempt: attempt, Error: err})
			if n.RetryPolicy.Backoff > 0 {
				select {
				case <-time.After(n.RetryPolicy.Backoff):
				case <-ctx.Done():
				}
			}
		}
	}

	elapsed := time.Since(start)
	emitEvent(d.observer, NodeEvent{Type: EventNodeExit, Node: n.Name, Attempt: attempts, Error: lastErr, Elapsed: elapsed})
	rc.recordEvent(NodeEvent{Type: EventNodeExit, Node: n.Name, Attempt: attempts, Error: lastErr, Elapsed: elapsed})
	return StatusFailed, lastErr, elapsed
}
