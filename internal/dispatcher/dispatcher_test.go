package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"nerva/internal/knowledge"
	"nerva/internal/llmclient"
	"nerva/internal/memorystore"
	"nerva/internal/safety"
	"nerva/internal/skills"
	"nerva/internal/tasktypes"
	"nerva/internal/threadstore"
)

func TestDispatch_RoutesCalendarByKeyword(t *testing.T) {
	llm := &llmclient.MockTextLLM{Responses: []string{
		`{"needs_clarification": false}`,
		`{"title": "Standup", "date": "tomorrow"}`,
	}}
	deps := &skills.Deps{LLM: llm, Calendar: &skills.MockCalendarSkill{}}
	d := New(llm, deps, nil)

	result, err := d.Dispatch(context.Background(), "schedule a standup meeting tomorrow", tasktypes.TaskContext{})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Route != skills.RouteCalendar {
		t.Errorf("expected calendar route, got %q", result.Route)
	}
}

func TestDispatch_RefusesRiskyCommandWithoutConfirmation(t *testing.T) {
	llm := &llmclient.MockTextLLM{Responses: []string{`{"needs_clarification": false}`}}
	deps := &skills.Deps{LLM: llm, Gmail: &skills.MockGmailSkill{}}
	d := New(llm, deps, nil)
	d.Safety = safety.NewManager(func(ctx context.Context, command string) (bool, error) {
		return false, nil
	})

	result, err := d.Dispatch(context.Background(), "send an email to my boss", tasktypes.TaskContext{})
	if !errors.Is(err, ErrRefused) {
		t.Fatalf("expected ErrRefused, got %v", err)
	}
	if result.Status != "refused" {
		t.Errorf("expected refused status, got %q", result.Status)
	}
}

func TestDispatch_WritesThreadAndKnowledgeGraph(t *testing.T) {
	llm := &llmclient.MockTextLLM{Responses: []string{`{"needs_clarification": false}`}}
	deps := &skills.Deps{LLM: llm}
	d := New(llm, deps, memorystore.NewStore())

	threads, err := threadstore.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	d.Threads = threads
	d.Knowledge = knowledge.NewGraph()

	result, err := d.Dispatch(context.Background(), "what's the capital of France", tasktypes.TaskContext{})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Route != skills.RouteFreeForm {
		t.Fatalf("expected free_form route, got %q", result.Route)
	}

	list := threads.List("", "")
	if len(list) != 1 {
		t.Fatalf("expected one thread to have been created, got %d", len(list))
	}
	if len(list[0].Entries) != 2 {
		t.Fatalf("expected a creation entry and a result entry, got %d", len(list[0].Entries))
	}

	if node, ok := d.Knowledge.Node(list[0].ThreadID); !ok || node.Type != "thread" {
		t.Errorf("expected thread to be ingested into the knowledge graph")
	}
}

func TestDispatch_RecordsOneTaskResultReferencedByThreadEntry(t *testing.T) {
	llm := &llmclient.MockTextLLM{Responses: []string{`{"needs_clarification": false}`}}
	deps := &skills.Deps{LLM: llm}
	memory := memorystore.NewStore()
	d := New(llm, deps, memory)

	threads, err := threadstore.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	d.Threads = threads

	if _, err := d.Dispatch(context.Background(), "tell me something", tasktypes.TaskContext{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	results := memory.FilterByKind(memorystore.KindTaskResult, 0)
	if len(results) != 1 {
		t.Fatalf("expected exactly one task_result item, got %d", len(results))
	}

	list := threads.List("", "")
	if len(list) != 1 {
		t.Fatalf("expected one thread, got %d", len(list))
	}
	var referenced int
	for _, e := range list[0].Entries {
		if e.Metadata["memory_id"] == results[0].ID {
			referenced++
		}
	}
	if referenced != 1 {
		t.Errorf("expected the task_result id on exactly one entry, got %d", referenced)
	}
}

func TestDispatch_SerializesHandlersUnderParallelismOne(t *testing.T) {
	llm := &llmclient.MockTextLLM{Responses: []string{`{"needs_clarification": false}`}}
	deps := &skills.Deps{LLM: llm}
	d := New(llm, deps, nil)
	d.SetParallelism(1)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := d.Dispatch(context.Background(), "tell me something", tasktypes.TaskContext{})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("dispatch %d: %v", i, err)
		}
	}
}

func TestClassify_FallsBackToFreeFormWithoutLLM(t *testing.T) {
	reg := skills.NewRegistry()
	route := Classify(context.Background(), nil, reg, "tell me a joke")
	if route != skills.RouteFreeForm {
		t.Errorf("expected free_form, got %q", route)
	}
}
