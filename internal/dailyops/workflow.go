package dailyops

import (
	"context"
	"fmt"
	"strings"

	"nerva/internal/llmclient"
	"nerva/internal/memorystore"
	"nerva/internal/metrics"
	"nerva/pkg/engine"
)

const summarizePrompt = `You are nerva's operations assistant. Below is raw operational data: open TODOs, recent log lines, and cluster status. Produce a short prioritized task list for today - most urgent first, one line per item. If there is nothing actionable, say so in one line.

%s`

// BuildDag returns the collect -> summarize -> write_memory pipeline
// behind one daily-ops cycle. collect fans the sub-collectors out in
// parallel internally and never fails the dag outright: a collector
// that finds nothing contributes an empty section. summarize needs a
// text model; write_memory needs a memory store; either being nil
// degrades that node to a pass-through instead of failing the run.
func BuildDag(llm llmclient.TextLLM, memory *memorystore.Store, cfg Config) *engine.Dag {
	dag := engine.NewDag("daily-ops", engine.WithObserver(metrics.NewDagObserver("daily-ops")))

	dag.AddNode(engine.DagNode{
		Name: "collect",
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			snapshot, err := CollectAll(ctx, cfg.NotesDir, cfg.LogDir, cfg.DashboardURL)
			if err != nil {
				log.Warn("collectors failed, continuing with an empty snapshot", "error", err)
				snapshot = Snapshot{}
			}
			return snapshot, nil
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "summarize",
		Deps: []string{"collect"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			raw, _ := rc.Artifact("collect")
			snapshot, _ := raw.(Snapshot)

			if llm == nil {
				return "", nil
			}
			summary, err := llm.Complete(ctx, fmt.Sprintf(summarizePrompt, renderSnapshot(snapshot)))
			if err != nil {
				return nil, fmt.Errorf("dailyops: summarize: %w", err)
			}
			return summary, nil
		},
	})

	dag.AddNode(engine.DagNode{
		Name: "write_memory",
		Deps: []string{"summarize"},
		Func: func(ctx context.Context, rc *engine.RunContext) (any, error) {
			rawSnapshot, _ := rc.Artifact("collect")
			snapshot, _ := rawSnapshot.(Snapshot)
			rawSummary, _ := rc.Artifact("summarize")
			summary, _ := rawSummary.(string)

			rc.SetOutput("summary", summary)
			rc.SetOutput("payload", map[string]any{
				"todos":             snapshot.TODOs,
				"system_events":     snapshot.SystemEvents,
				"cluster_reachable": snapshot.ClusterStatus.Reachable,
				"cluster_nodes":     snapshot.ClusterStatus.NodeSummary,
				"summary":           summary,
			})

			if memory == nil {
				return "", nil
			}
			text := summary
			if text == "" {
				text = renderSnapshot(snapshot)
			}
			item := memorystore.New(memorystore.KindDailyOp, text, map[string]any{
				"todo_count":        len(snapshot.TODOs),
				"event_count":       len(snapshot.SystemEvents),
				"cluster_reachable": snapshot.ClusterStatus.Reachable,
			}, []string{"daily_ops"})
			memory.Add(item)
			return item.ID, nil
		},
	})

	return dag
}

func renderSnapshot(s Snapshot) string {
	var b strings.Builder
	b.WriteString("TODOs:\n")
	if len(s.TODOs) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, t := range s.TODOs {
		b.WriteString("  " + t + "\n")
	}
	b.WriteString("Recent log lines:\n")
	if len(s.SystemEvents) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, e := range s.SystemEvents {
		b.WriteString("  " + e + "\n")
	}
	fmt.Fprintf(&b, "Cluster: reachable=%v nodes=%v\n", s.ClusterStatus.Reachable, s.ClusterStatus.NodeSummary)
	return b.String()
}
