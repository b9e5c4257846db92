package skills

import (
	"context"
	"time"

	"nerva/internal/metrics"
	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

// newSkillDag builds a Dag wired with the standard observers every
// skill run gets: Prometheus node metrics and structured logs.
func newSkillDag(name string) *engine.Dag {
	return engine.NewDag(name, engine.WithObserver(engine.MultiObserver{
		metrics.NewDagObserver(name),
		&engine.LogObserver{Logger: log},
	}))
}

// runSkillDag executes dag with a RunContext pre-populated from the
// command and its TaskContext, then folds the run's outputs and node
// trace into a TaskResult. Node failures surface as an error result
// rather than a panic or a half-built TaskResult; the trace is
// attached either way so callers can see which node broke.
func runSkillDag(ctx context.Context, route string, dag *engine.Dag, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	rc := engine.NewRunContext(map[string]any{
		"command": command,
		"source":  tc.Source,
		"meta":    tc.Meta,
	})

	runErr := dag.Run(ctx, rc)
	rc.FinishedAt = time.Now()

	result := tasktypes.TaskResult{
		Command: command,
		Route:   route,
		Steps:   rc.Events(),
	}

	if summary, ok := rc.Output("summary"); ok {
		result.Summary, _ = summary.(string)
	}
	if answer, ok := rc.Output("answer"); ok {
		result.Answer, _ = answer.(string)
	}
	if payload, ok := rc.Output("payload"); ok {
		result.Payload, _ = payload.(map[string]any)
	}
	if status, ok := rc.Output("status"); ok {
		result.Status, _ = status.(string)
	}
	if result.Status == "" {
		result.Status = "ok"
	}

	if runErr != nil {
		result.Status = "failed"
		if result.Summary == "" {
			result.Summary = route + " failed: " + firstNodeError(rc.Events(), runErr).Error()
		}
		return result, firstNodeError(rc.Events(), runErr)
	}
	return result, nil
}

// firstNodeError digs the first node-level error out of the run trace,
// falling back to the engine's aggregate error.
func firstNodeError(events []engine.NodeEvent, fallback error) error {
	for _, e := range events {
		if e.Type == engine.EventNodeExit && e.Error != nil {
			return e.Error
		}
	}
	return fallback
}
