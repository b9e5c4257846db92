package skills

import (
	"context"
	"strings"
	"testing"

	"nerva/internal/browserdriver"
	"nerva/internal/llmclient"
	"nerva/internal/tasktypes"
	"nerva/internal/visionagent"
)

func TestNewRegistry_HasAllRoutes(t *testing.T) {
	reg := NewRegistry()
	want := []string{
		RouteCalendar, RouteMail, RouteDrive, RouteLookup, RouteResearch,
		RouteGenericBrowser, RouteFreeForm, RouteDailyOps, RouteRepoQuery,
	}
	for _, route := range want {
		if _, ok := reg[route]; !ok {
			t.Errorf("missing handler for route %q", route)
		}
	}
}

func TestHandleCalendar_MissingCollaboratorErrors(t *testing.T) {
	deps := &Deps{LLM: &llmclient.MockTextLLM{}}
	result, err := handleCalendar(context.Background(), deps, "schedule lunch tomorrow", tasktypes.TaskContext{})
	if err == nil {
		t.Fatal("expected an error with no calendar collaborator configured")
	}
	if result.Status != "failed" {
		t.Errorf("expected failed status, got %q", result.Status)
	}
}

func TestHandleCalendar_CreatesEvent(t *testing.T) {
	deps := &Deps{
		LLM:      &llmclient.MockTextLLM{Responses: []string{`{"title": "Lunch with Sam", "date": "tomorrow"}`}},
		Calendar: &MockCalendarSkill{},
	}
	result, err := handleCalendar(context.Background(), deps, "schedule lunch with Sam tomorrow", tasktypes.TaskContext{})
	if err != nil {
		t.Fatalf("handleCalendar: %v", err)
	}
	if result.Status != "ok" {
		t.Errorf("expected ok status, got %q", result.Status)
	}
	if result.Payload["title"] != "Lunch with Sam" {
		t.Errorf("unexpected payload: %+v", result.Payload)
	}
}

func TestHandleFreeForm_AnswersDirectly(t *testing.T) {
	deps := &Deps{LLM: &llmclient.MockTextLLM{Responses: []string{"Paris"}}}
	result, err := handleFreeForm(context.Background(), deps, "what is the capital of France", tasktypes.TaskContext{})
	if err != nil {
		t.Fatalf("handleFreeForm: %v", err)
	}
	if result.Summary != "Paris" {
		t.Errorf("expected Paris, got %q", result.Summary)
	}
}

func TestHandleLookup_PhoneAnswerDistinctFromSummary(t *testing.T) {
	driver, mockLog := browserdriver.NewMockDriver()
	mockLog.InnerTextResult = "Ace Plumbing Co: (312) 555-0199 call now!"
	agent := visionagent.New(&llmclient.MockVisionLLM{}, driver)

	deps := &Deps{
		LLM:    &llmclient.MockTextLLM{Responses: []string{`{"query": "Ace Plumbing", "kind": "phone"}`}},
		Vision: agent,
	}
	result, err := handleLookup(context.Background(), deps, "find the phone number for Ace Plumbing", tasktypes.TaskContext{})
	if err != nil {
		t.Fatalf("handleLookup: %v", err)
	}
	if !strings.Contains(result.Answer, "(312) 555-0199") {
		t.Errorf("expected the phone number on Answer, got %q", result.Answer)
	}
	if result.Summary == "" || result.Summary == result.Answer {
		t.Errorf("expected a summary distinct from the answer, got %q", result.Summary)
	}
}

func TestHandleCalendar_RecordsDagTrace(t *testing.T) {
	deps := &Deps{
		LLM:      &llmclient.MockTextLLM{Responses: []string{`{"title": "Lunch", "date": "tomorrow"}`}},
		Calendar: &MockCalendarSkill{},
	}
	result, err := handleCalendar(context.Background(), deps, "schedule lunch tomorrow", tasktypes.TaskContext{})
	if err != nil {
		t.Fatalf("handleCalendar: %v", err)
	}
	if len(result.Steps) == 0 {
		t.Fatal("expected node events on the result")
	}
	seen := map[string]bool{}
	for _, e := range result.Steps {
		seen[e.Node] = true
	}
	if !seen["interpret"] || !seen["create_event"] {
		t.Errorf("expected interpret and create_event in the trace, got %v", seen)
	}
}

func TestHandleMail_FailedNodeSurfacesAsErrorResult(t *testing.T) {
	deps := &Deps{
		LLM:   &llmclient.MockTextLLM{Responses: []string{`{"subject": "hi"}`}},
		Gmail: &MockGmailSkill{},
	}
	result, err := handleMail(context.Background(), deps, "write to nobody in particular", tasktypes.TaskContext{})
	if err == nil {
		t.Fatal("expected an error when no recipient could be determined")
	}
	if result.Status != "failed" {
		t.Errorf("expected failed status, got %q", result.Status)
	}
	if len(result.Steps) == 0 {
		t.Error("expected the failing run's trace to be attached")
	}
}

func TestExtractStructured_FindsEmbeddedJSON(t *testing.T) {
	text := "Sure, here you go:\n```json\n{\"a\": 1}\n```\nLet me know if you need more."
	fields, err := extractStructured(text)
	if err != nil {
		t.Fatalf("extractStructured: %v", err)
	}
	if fields["a"].(float64) != 1 {
		t.Errorf("unexpected fields: %+v", fields)
	}
}
