package skills

import (
	"context"
	"fmt"

	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

// handleCalendar extracts an event from the command, then creates it
// through the calendar collaborator, as a two-node dag so the
// extraction and the side effect are separately observable and
// retryable.
func handleCalendar(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.Calendar == nil {
		return errorResult(RouteCalendar, command, fmt.Errorf("skills: no calendar collaborator configured"))
	}

	dag := newSkillDag("calendar")

	dag.AddNode(engine.DagNode{
		Name: "interpret",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			return interpretEvent(ctx, deps.LLM, command)
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "create_event",
		Deps: []string{"interpret"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			raw, _ := rc.Artifact("interpret")
			event, _ := raw.(CalendarEvent)
			payload, err := deps.Calendar.CreateEvent(ctx, event)
			if err != nil {
				return nil, fmt.Errorf("skills: create calendar event: %w", err)
			}
			rc.SetOutput("summary", fmt.Sprintf("created calendar event %q", event.Title))
			rc.SetOutput("payload", payload)
			return payload, nil
		},
	})

	return runSkillDag(ctx, RouteCalendar, dag, command, tc)
}
