package skills

import (
	"context"
	"fmt"
	"strings"

	"nerva/internal/tasktypes"
	"nerva/pkg/engine"
)

func handleDrive(ctx context.Context, deps *Deps, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if deps.Drive == nil {
		return errorResult(RouteDrive, command, fmt.Errorf("skills: no drive collaborator configured"))
	}

	dag := newSkillDag("drive")

	dag.AddNode(engine.DagNode{
		Name: "parse_query",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			if strings.Contains(strings.ToLower(command), "recent") {
				return map[string]string{"mode": "recent"}, nil
			}
			return map[string]string{"mode": "search", "query": extractDriveQuery(command)}, nil
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "act",
		Deps: []string{"parse_query"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			raw, _ := rc.Artifact("parse_query")
			parsed, _ := raw.(map[string]string)

			if parsed["mode"] == "recent" {
				payload, err := deps.Drive.ListRecentFiles(ctx)
				if err != nil {
					return nil, fmt.Errorf("skills: list recent files: %w", err)
				}
				rc.SetOutput("summary", "listed recent drive files")
				rc.SetOutput("payload", payload)
				return payload, nil
			}

			payload, err := deps.Drive.Search(ctx, parsed["query"])
			if err != nil {
				return nil, fmt.Errorf("skills: search drive: %w", err)
			}
			rc.SetOutput("summary", fmt.Sprintf("searched drive for %q", parsed["query"]))
			rc.SetOutput("payload", payload)
			return payload, nil
		},
	})

	return runSkillDag(ctx, RouteDrive, dag, command, tc)
}

func extractDriveQuery(command string) string {
	lower := strings.ToLower(command)
	for _, marker := range []string{"for ", "about ", "named "} {
		if idx := strings.Index(lower, marker); idx >= 0 {
			return strings.TrimSpace(command[idx+len(marker):])
		}
	}
	return command
}
