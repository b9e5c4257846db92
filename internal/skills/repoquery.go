package skills

import (
	"context"
	"fmt"

	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

// handleRepoQuery delegates to the repo-insight collector wired in by
// the dispatcher, passing the raw command through as the query. The
// collector runs its own index -> answer -> memory-write dag; this
// node just bridges it into the skill trace.
func handleRepoQuery(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.RepoQuery == nil {
		return errorResult(RouteRepoQuery, command, fmt.Errorf("skills: no repo-query collector configured"))
	}

	dag := newSkillDag("repo-query-skill")

	dag.AddNode(engine.DagNode{
		Name: "query",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			payload, err := deps.RepoQuery(ctx, command)
			if err != nil {
				return nil, fmt.Errorf("skills: repo query: %w", err)
			}
			summary := "repo query complete"
			if answer, ok := payload["answer"].(string); ok && answer != "" {
				summary = answer
				rc.SetOutput("answer", answer)
			}
			rc.SetOutput("summary", summary)
			rc.SetOutput("payload", payload)
			return payload, nil
		},
	})

	return runSkillDag(ctx, RouteRepoQuery, dag, command, tc)
}
