package skills

import (
	"context"
	"fmt"

	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

func handleResearch(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.Vision == nil {
		return errorResult(RouteResearch, command, fmt.Errorf("skills: no vision agent configured"))
	}

	dag := newSkillDag("research")

	dag.AddNode(engine.DagNode{
		Name: "research",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			result, err := deps.Vision.ResearchTopic(ctx, command, 3)
			if err != nil {
				return nil, fmt.Errorf("skills: research: %w", err)
			}
			rc.SetOutput("summary", result.Reason)
			rc.SetOutput("answer", result.Answer)
			rc.SetOutput("payload", map[string]any{"reason": result.Reason})
			return result, nil
		},
	})

	return runSkillDag(ctx, RouteResearch, dag, command, tc)
}
