package skills

import (
	"context"
	"fmt"

	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

// handleGenericBrowser runs the full perception-action loop for a
// request that does not match any scripted playbook. It is the
// fallback for open-ended "go do something on the web" commands.
// Step verification is on for this route: with no playbook there are
// no selectors to trust, so the agent double-checks its own actions.
func handleGenericBrowser(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.Vision == nil {
		return errorResult(RouteGenericBrowser, command, fmt.Errorf("skills: no vision agent configured"))
	}

	dag := newSkillDag("generic-browser")

	dag.AddNode(engine.DagNode{
		Name: "vision_loop",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			startingURL := ""
			if url, ok := tc.Meta["starting_url"].(string); ok {
				startingURL = url
			}

			verify := true
			if v, ok := tc.Meta["verify_actions"].(bool); ok {
				verify = v
			}
			deps.Vision.VerifyActions = verify

			result, err := deps.Vision.ExecuteTask(ctx, command, startingURL)
			if err != nil {
				return nil, fmt.Errorf("skills: execute task: %w", err)
			}

			status := "ok"
			if result.Status != "success" {
				status = "incomplete"
			}
			rc.SetOutput("status", status)
			rc.SetOutput("summary", fmt.Sprintf("browser task finished after %d steps: %s", result.Steps, result.Reason))
			rc.SetOutput("answer", result.Answer)
			rc.SetOutput("payload", map[string]any{"reason": result.Reason, "steps": result.Steps})
			return result, nil
		},
	})

	return runSkillDag(ctx, RouteGenericBrowser, dag, command, tc)
}
