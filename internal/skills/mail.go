package skills

import (
	"context"
	"fmt"
	"strings"

	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

func handleMail(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.Gmail == nil {
		return errorResult(RouteMail, command, fmt.Errorf("skills: no gmail collaborator configured"))
	}

	if isInboxSummaryCommand(command) {
		dag := newSkillDag("mail-inbox")
		dag.AddNode(engine.DagNode{
			Name: "summarize_inbox",
			Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
				payload, err := deps.Gmail.SummarizeInbox(ctx)
				if err != nil {
					return nil, fmt.Errorf("skills: summarize inbox: %w", err)
				}
				rc.SetOutput("summary", "summarized unread mail")
				rc.SetOutput("payload", payload)
				return payload, nil
			},
		})
		return runSkillDag(ctx, RouteMail, dag, command, tc)
	}

	dag := newSkillDag("mail-send")

	dag.AddNode(engine.DagNode{
		Name: "interpret",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			draft, err := interpretEmail(ctx, deps.LLM, command)
			if err != nil {
				return nil, err
			}
			if len(draft.To) == 0 {
				return nil, fmt.Errorf("skills: could not determine a recipient for this email")
			}
			return draft, nil
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "send",
		Deps: []string{"interpret"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			raw, _ := rc.Artifact("interpret")
			draft, _ := raw.(EmailDraft)
			payload, err := deps.Gmail.SendEmail(ctx, draft)
			if err != nil {
				return nil, fmt.Errorf("skills: send email: %w", err)
			}
			rc.SetOutput("summary", fmt.Sprintf("sent email %q to %s", draft.Subject, strings.Join(draft.To, ", ")))
			rc.SetOutput("payload", payload)
			return payload, nil
		},
	})

	return runSkillDag(ctx, RouteMail, dag, command, tc)
}

func isInboxSummaryCommand(command string) bool {
	lower := strings.ToLower(command)
	for _, kw := range []string{"unread", "inbox", "summarize my mail", "check my email", "check my mail"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
