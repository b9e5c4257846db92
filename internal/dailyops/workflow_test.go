package dailyops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nerva/internal/llmclient"
	"nerva/internal/memorystore"
	"nerva/pkg/engine"
)

func TestBuildDag_CollectSummarizeWriteMemory(t *testing.T) {
	notesDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(notesDir, "plan.md"), []byte("TODO: water the plants\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	llm := &llmclient.MockTextLLM{Responses: []string{"1. water the plants"}}
	memory := memorystore.NewStore()
	cfg := Config{
		NotesDir:     notesDir,
		LogDir:       t.TempDir(),
		DashboardURL: "http://127.0.0.1:1",
	}

	dag := BuildDag(llm, memory, cfg)
	rc := engine.NewRunContext(nil)
	if err := dag.Run(context.Background(), rc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	summary, _ := rc.Output("summary")
	if summary != "1. water the plants" {
		t.Errorf("unexpected summary: %v", summary)
	}

	items := memory.FilterByKind(memorystore.KindDailyOp, 0)
	if len(items) != 1 {
		t.Fatalf("expected one daily_op memory item, got %d", len(items))
	}
	if items[0].Text != "1. water the plants" {
		t.Errorf("unexpected memory text: %q", items[0].Text)
	}
}

func TestBuildDag_NilCollaboratorsDegradeGracefully(t *testing.T) {
	cfg := Config{
		NotesDir:     filepath.Join(t.TempDir(), "missing"),
		LogDir:       filepath.Join(t.TempDir(), "missing"),
		DashboardURL: "http://127.0.0.1:1",
	}

	dag := BuildDag(nil, nil, cfg)
	rc := engine.NewRunContext(nil)
	if err := dag.Run(context.Background(), rc); err != nil {
		t.Fatalf("expected the cycle to survive nil collaborators, got %v", err)
	}

	payload, _ := rc.Output("payload")
	if payload == nil {
		t.Error("expected a payload output even with nil collaborators")
	}
}
