package skills

import (
	"context"
	"fmt"

	"nerva/internal/playbook"
	"nerva/internal/tasktypes"
	"nerva/internal/visionagent"
	"nerva/pkg/engine"
)

// handleLookup runs interpret -> execute -> extract: figure out what
// kind of lookup this is, drive the matching playbook (or the phone
// pipeline), then read the answer off the page.
func handleLookup(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.Vision == nil {
		return errorResult(RouteLookup, command, fmt.Errorf("skills: no vision agent configured"))
	}

	dag := newSkillDag("lookup")

	dag.AddNode(engine.DagNode{
		Name: "interpret",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			return interpretLookup(ctx, deps.LLM, command)
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "execute",
		Deps: []string{"interpret"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			raw, _ := rc.Artifact("interpret")
			query, _ := raw.(LookupQuery)

			if query.Kind == "phone" {
				result, err := deps.Vision.LookupPhoneNumber(ctx, query.Query)
				if err != nil {
					return nil, fmt.Errorf("skills: phone lookup: %w", err)
				}
				rc.SetOutput("summary", result.Reason)
				rc.SetOutput("answer", result.Answer)
				rc.SetOutput("payload", map[string]any{"kind": "phone", "query": query.Query})
				return result.Answer, nil
			}

			pb, readSelector := lookupPlaybookFor(query)
			steps, err := deps.Vision.RunPlaybook(ctx, pb)
			if err != nil {
				return nil, fmt.Errorf("skills: %s playbook: %w", query.Kind, err)
			}
			return map[string]any{"query": query, "steps": steps, "selector": readSelector}, nil
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "extract",
		Deps: []string{"execute"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			raw, _ := rc.Artifact("execute")
			run, ok := raw.(map[string]any)
			if !ok {
				// phone branch already populated the outputs
				return nil, nil
			}
			query, _ := run["query"].(LookupQuery)
			selector, _ := run["selector"].(string)
			steps, _ := run["steps"].([]playbook.StepResult)

			snippet, _ := deps.Vision.Driver.InnerText(ctx, selector)
			summary := fmt.Sprintf("%s lookup completed for %q", query.Kind, query.Query)
			if snippet == "" {
				summary = fmt.Sprintf("could not find a direct answer for %q, check the browser", query.Query)
			}
			rc.SetOutput("summary", summary)
			rc.SetOutput("answer", snippet)
			rc.SetOutput("payload", map[string]any{"kind": query.Kind, "query": query.Query, "steps": stepNames(steps)})
			return snippet, nil
		},
	})

	return runSkillDag(ctx, RouteLookup, dag, command, tc)
}

func lookupPlaybookFor(query LookupQuery) (playbook.Playbook, string) {
	switch query.Kind {
	case "weather":
		return visionagent.BuildWeatherPlaybook(query.Query), "#wob_wc"
	case "business_hours":
		return visionagent.BuildBusinessHoursPlaybook(query.Query), ".LrzXr, .YrbPuc"
	default:
		return visionagent.BuildLookupPlaybook(query.Query), "#search"
	}
}

func stepNames(steps []playbook.StepResult) []string {
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, string(s.Status)+":"+s.Step)
	}
	return names
}
