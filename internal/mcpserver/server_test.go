package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"nerva/internal/dispatcher"
	"nerva/internal/llmclient"
	"nerva/internal/memorystore"
	"nerva/internal/skills"
	"nerva/internal/threadstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	llm := &llmclient.MockTextLLM{Responses: []string{`{"needs_clarification": false}`, "42"}}
	deps := &skills.Deps{LLM: llm}
	d := dispatcher.New(llm, deps, memorystore.NewStore())

	threads, err := threadstore.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	d.Threads = threads

	return NewServer(d)
}

func connectInMemory(t *testing.T, ctx context.Context, srv *Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		t.Fatalf("CallTool(%s) returned error: %+v", name, res.Content)
	}
	result := map[string]any{}
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v", err)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func TestServer_ToolDiscovery(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{"dispatch_task": false, "get_thread": false, "search_memory": false}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestServer_DispatchTaskThenGetThread(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	dispatchResult := callTool(t, ctx, session, "dispatch_task", map[string]any{
		"command": "what is six times seven",
	})
	if dispatchResult["route"] != "free_form" {
		t.Fatalf("expected free_form route, got %v", dispatchResult["route"])
	}

	threads := srv.Dispatcher.Threads.List("", "")
	if len(threads) != 1 {
		t.Fatalf("expected one thread, got %d", len(threads))
	}

	threadResult := callTool(t, ctx, session, "get_thread", map[string]any{
		"thread_id": threads[0].ThreadID,
	})
	entries, ok := threadResult["entries"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 entries in thread, got %v", threadResult["entries"])
	}
}

func TestServer_SearchMemory_FindsRecordedDispatch(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	callTool(t, ctx, session, "dispatch_task", map[string]any{"command": "what is six times seven"})

	result := callTool(t, ctx, session, "search_memory", map[string]any{"query": "six times seven"})
	items, ok := result["items"].([]any)
	if !ok || len(items) == 0 {
		t.Fatalf("expected at least one memory match, got %v", result["items"])
	}
}
