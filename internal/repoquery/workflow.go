package repoquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"nerva/internal/llmclient"
	"nerva/internal/memorystore"
	"nerva/internal/metrics"
	"nerva/pkg/engine"
)

const maxContextChars = 16000

const repoPrompt = `You are nerva's repo-aware assistant.

Given a question about the codebase and a structured summary of relevant files, answer concisely and accurately. Reference specific files with a "path:line" style citation where possible. If you're unsure, say so - don't invent file paths.`

// BuildDag returns the index -> answer -> memory-write pipeline that
// backs a single repo query. root and question are read from the
// RunContext's inputs ("repo_root", "question").
func BuildDag(llm llmclient.TextLLM, memory *memorystore.Store) *engine.Dag {
	dag := engine.NewDag("repo-query", engine.WithObserver(metrics.NewDagObserver("repo-query")))

	dag.AddNode(engine.DagNode{
		Name: "index",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			root, _ := rc.Input("repo_root")
			rootPath, _ := root.(string)
			if rootPath == "" {
				return nil, fmt.Errorf("repoquery: repo_root input is required")
			}
			files, err := Index(rootPath)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"root":      rootPath,
				"structure": SummarizeStructure(files),
				"files":     files,
			}, nil
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "answer",
		Deps: []string{"index"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			question, _ := rc.Input("question")
			questionStr, _ := question.(string)

			repoContext, _ := rc.Artifact("index")
			contextJSON, err := json.Marshal(repoContext)
			if err != nil {
				return nil, fmt.Errorf("repoquery: marshal context: %w", err)
			}
			contextStr := string(contextJSON)
			if len(contextStr) > maxContextChars {
				contextStr = contextStr[:maxContextChars] + "\n... (context truncated)"
			}

			prompt := fmt.Sprintf("%s\n\nQuestion: %s\n\nRepository context:\n%s", repoPrompt, questionStr, contextStr)
			answer, err := llm.Complete(ctx, prompt)
			if err != nil {
				return nil, fmt.Errorf("repoquery: generate answer: %w", err)
			}
			rc.SetOutput("answer", answer)
			return answer, nil
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "memory_write",
		Deps: []string{"answer"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			root, _ := rc.Input("repo_root")
			question, _ := rc.Input("question")
			answer, _ := rc.Artifact("answer")

			rootStr, _ := root.(string)
			text := fmt.Sprintf("Repo: %s\nQ: %s\nA: %s", rootStr, question, answer)
			item := memorystore.New(memorystore.KindRepoInsight, text, map[string]any{
				"repo_root": rootStr,
				"question":  question,
			}, []string{"repo", "qa", lastPathSegment(rootStr)})
			memory.Add(item)
			return item.ID, nil
		},
	})

	return dag
}

// Run executes BuildDag's pipeline for a single question against
// root, returning the generated answer.
func Run(ctx context.Context, llm llmclient.TextLLM, memory *memorystore.Store, root, question string) (string, error) {
	dag := BuildDag(llm, memory)
	rc := engine.NewRunContext(map[string]any{"repo_root": root, "question": question})
	if err := dag.Run(ctx, rc); err != nil {
		return "", fmt.Errorf("repoquery: run: %w", err)
	}
	answer, _ := rc.Output("answer")
	answerStr, _ := answer.(string)
	return answerStr, nil
}

// AsSkillFunc adapts Run into the func(ctx, query) (map[string]any,
// error) shape skills.Deps.RepoQuery expects, fixing repoRoot as the
// tree every query is answered against.
func AsSkillFunc(llm llmclient.TextLLM, memory *memorystore.Store, repoRoot string) func(ctx context.Context, query string) (map[string]any, error) {
	return func(ctx context.Context, query string) (map[string]any, error) {
		answer, err := Run(ctx, llm, memory, repoRoot, query)
		if err != nil {
			return nil, err
		}
		return map[string]any{"answer": answer, "repo_root": repoRoot}, nil
	}
}

func lastPathSegment(path string) string {
	path = strings.TrimRight(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
