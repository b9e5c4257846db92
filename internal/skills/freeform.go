package skills

import (
	"context"
	"fmt"

	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

// handleFreeForm answers a command directly from the language model
// with no tool use, for requests that are not actions at all
// ("what's the capital of France").
func handleFreeForm(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.LLM == nil {
		return errorResult(RouteFreeForm, command, fmt.Errorf("skills: no language model configured"))
	}

	dag := newSkillDag("free-form")

	dag.AddNode(engine.DagNode{
		Name: "complete",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			answer, err := deps.LLM.Complete(ctx, command)
			if err != nil {
				return nil, fmt.Errorf("skills: free-form completion: %w", err)
			}
			rc.SetOutput("summary", answer)
			rc.SetOutput("answer", answer)
			return answer, nil
		},
	})

	return runSkillDag(ctx, RouteFreeForm, dag, command, tc)
}
