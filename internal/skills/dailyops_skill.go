package skills

import (
	"context"
	"fmt"

	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

// handleDailyOps delegates to the collector wired in by the
// dispatcher; the dailyops package runs its own
// collect -> summarize -> write_memory dag, so this node just bridges
// its output into the skill trace.
func handleDailyOps(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.DailyOps == nil {
		return errorResult(RouteDailyOps, command, fmt.Errorf("skills: no daily-ops collector configured"))
	}

	dag := newSkillDag("daily-ops-skill")

	dag.AddNode(engine.DagNode{
		Name: "run_cycle",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			payload, err := deps.DailyOps(ctx)
			if err != nil {
				return nil, fmt.Errorf("skills: daily-ops collection: %w", err)
			}
			summary := "daily-ops cycle complete"
			if s, ok := payload["summary"].(string); ok && s != "" {
				summary = s
			}
			rc.SetOutput("summary", summary)
			rc.SetOutput("payload", payload)
			return payload, nil
		},
	})

	return runSkillDag(ctx, RouteDailyOps, dag, command, tc)
}
