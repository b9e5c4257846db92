// Package mcpserver exposes nerva's dispatcher, thread store, and
// memory store as MCP tools, so an editor or agent connected over MCP
// can drive the same task pipeline the CLI and voice/hotkey/ambient
// frontends use.
package mcpserver

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"nerva/internal/dispatcher"
	"nerva/internal/logging"
	"nerva/internal/tasktypes"
)

var log = logging.New("mcpserver")

// Server wraps the MCP SDK server and the Dispatcher it fronts.
type Server struct {
	MCPServer  *sdkmcp.Server
	Dispatcher *dispatcher.Dispatcher
}

// NewServer builds an MCP server with nerva's tools registered against d.
func NewServer(d *dispatcher.Dispatcher) *Server {
	s := &Server{
		Dispatcher: d,
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "nerva", Version: "dev"},
			nil,
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "dispatch_task",
		Description: "Run a natural-language command through nerva's dispatcher: clarification, safety gating, intent routing, and the matching skill.",
	}, s.handleDispatchTask)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_thread",
		Description: "Fetch a task thread by id, including its full entry history.",
	}, s.handleGetThread)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "search_memory",
		Description: "Search nerva's memory store for items whose text contains a query string.",
	}, s.handleSearchMemory)
}

type dispatchTaskInput struct {
	Command  string `json:"command" jsonschema:"the natural-language command to run"`
	ThreadID string `json:"thread_id,omitempty" jsonschema:"existing thread id to continue, if any"`
}

type dispatchTaskOutput struct {
	Route   string         `json:"route"`
	Status  string         `json:"status"`
	Summary string         `json:"summary"`
	Answer  string         `json:"answer,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

func (s *Server) handleDispatchTask(ctx context.Context, _ *sdkmcp.CallToolRequest, input dispatchTaskInput) (*sdkmcp.CallToolResult, dispatchTaskOutput, error) {
	if input.Command == "" {
		return nil, dispatchTaskOutput{}, fmt.Errorf("dispatch_task: command is required")
	}

	result, err := s.Dispatcher.Dispatch(ctx, input.Command, tasktypes.TaskContext{
		Source:   "mcp",
		ThreadID: input.ThreadID,
	})
	if err != nil && result.Route == "" {
		return nil, dispatchTaskOutput{}, fmt.Errorf("dispatch_task: %w", err)
	}

	log.Info("mcp dispatch_task", "route", result.Route, "status", result.Status)
	return nil, dispatchTaskOutput{
		Route:   result.Route,
		Status:  result.Status,
		Summary: result.Summary,
		Answer:  result.Answer,
		Payload: result.Payload,
	}, nil
}

type getThreadInput struct {
	ThreadID string `json:"thread_id" jsonschema:"thread id from dispatch_task or a previous get_thread call"`
}

type threadEntryOutput struct {
	EntryID string `json:"entry_id"`
	Text    string `json:"text"`
	Author  string `json:"author"`
}

type getThreadOutput struct {
	ThreadID string              `json:"thread_id"`
	Project  string              `json:"project"`
	Title    string              `json:"title"`
	Status   string              `json:"status"`
	Entries  []threadEntryOutput `json:"entries"`
}

func (s *Server) handleGetThread(ctx context.Context, _ *sdkmcp.CallToolRequest, input getThreadInput) (*sdkmcp.CallToolResult, getThreadOutput, error) {
	if s.Dispatcher.Threads == nil {
		return nil, getThreadOutput{}, fmt.Errorf("get_thread: thread store is not configured")
	}

	thread, ok := s.Dispatcher.Threads.Get(input.ThreadID)
	if !ok {
		return nil, getThreadOutput{}, fmt.Errorf("get_thread: thread %q not found", input.ThreadID)
	}

	entries := make([]threadEntryOutput, 0, len(thread.Entries))
	for _, e := range thread.Entries {
		entries = append(entries, threadEntryOutput{EntryID: e.EntryID, Text: e.Text, Author: e.Author})
	}

	return nil, getThreadOutput{
		ThreadID: thread.ThreadID,
		Project:  thread.Project,
		Title:    thread.Title,
		Status:   thread.Status,
		Entries:  entries,
	}, nil
}

type searchMemoryInput struct {
	Query string `json:"query" jsonschema:"text to search for across memory items"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
}

type memoryItemOutput struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type searchMemoryOutput struct {
	Items []memoryItemOutput `json:"items"`
}

func (s *Server) handleSearchMemory(ctx context.Context, _ *sdkmcp.CallToolRequest, input searchMemoryInput) (*sdkmcp.CallToolResult, searchMemoryOutput, error) {
	if input.Query == "" {
		return nil, searchMemoryOutput{}, fmt.Errorf("search_memory: query is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	matches := s.Dispatcher.Memory.Search(input.Query, "", nil, limit)
	items := make([]memoryItemOutput, 0, len(matches))
	for _, m := range matches {
		items = append(items, memoryItemOutput{ID: m.ID, Kind: string(m.Kind), Text: m.Text})
	}
	return nil, searchMemoryOutput{Items: items}, nil
}
