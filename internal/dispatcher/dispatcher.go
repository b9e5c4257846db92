// Package dispatcher routes a natural-language command through
// clarification, safety gating, intent classification, and the skill
// that handles it, then writes the outcome back to memory, the active
// task thread and the knowledge graph.
package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"nerva/internal/knowledge"
	"nerva/internal/llmclient"
	"nerva/internal/logging"
	"nerva/internal/memorystore"
	"nerva/internal/metrics"
	"nerva/internal/safety"
	"nerva/internal/skills"
	"nerva/internal/tasktypes"
	"nerva/internal/threadstore"
)

// defaultDispatchParallelism bounds how many Dispatch calls run their
// skill handler concurrently when a Dispatcher hasn't been given an
// explicit limit. Clarification and safety gating run outside the
// semaphore, so a slow confirmation prompt never holds a dispatch slot.
const defaultDispatchParallelism = 4

var log = logging.New("dispatcher")

// Dispatcher ties every collaborator together into the single
// Dispatch entry point the frontends (CLI, voice, hotkey, ambient,
// MCP) all call through.
type Dispatcher struct {
	LLM      llmclient.TextLLM
	Memory   *memorystore.Store
	Registry skills.Registry
	Deps     *skills.Deps
	Safety   *safety.Manager
	Clarifier

	Threads   *threadstore.Store
	Knowledge *knowledge.Graph

	// Timeout bounds a single skill execution. Zero disables the bound.
	Timeout time.Duration

	handlerSem *semaphore.Weighted
}

// New returns a Dispatcher with a default skill registry and an
// in-memory-only memory store if memory is nil.
func New(llm llmclient.TextLLM, deps *skills.Deps, memory *memorystore.Store) *Dispatcher {
	if memory == nil {
		memory = memorystore.NewStore()
	}
	return &Dispatcher{
		LLM:        llm,
		Memory:     memory,
		Registry:   skills.NewRegistry(),
		Deps:       deps,
		Safety:     safety.NewManager(nil),
		Timeout:    5 * time.Minute,
		handlerSem: semaphore.NewWeighted(defaultDispatchParallelism),
	}
}

// SetParallelism bounds how many skill handlers may run concurrently
// across all Dispatch calls sharing this Dispatcher. n <= 0 is ignored.
func (d *Dispatcher) SetParallelism(n int64) {
	if n > 0 {
		d.handlerSem = semaphore.NewWeighted(n)
	}
}

// Dispatch classifies and executes command, returning its result.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	start := time.Now()
	result, err := d.dispatch(ctx, command, tc)
	metrics.ObserveDispatch(result.Route, dispatchStatus(result, err), time.Since(start))
	return result, err
}

func dispatchStatus(result tasktypes.TaskResult, err error) string {
	switch {
	case err == nil:
		return "ok"
	case result.Status != "":
		return result.Status
	default:
		return "failed"
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, command string, tc tasktypes.TaskContext) (tasktypes.TaskResult, error) {
	if tc.Source == "" {
		tc.Source = "manual"
	}

	if d.Threads != nil && tc.ThreadID == "" {
		project := "general"
		if p, ok := tc.Meta["project"].(string); ok && p != "" {
			project = p
		}
		thread, err := d.Threads.Create(project, truncate(command, 80), "nerva", nil)
		if err != nil {
			return tasktypes.TaskResult{}, fmt.Errorf("dispatcher: create thread: %w", err)
		}
		tc.ThreadID = thread.ThreadID
		if _, err := d.Threads.AddEntry(thread.ThreadID, fmt.Sprintf("Task created: %s", command), "nerva", nil); err != nil {
			log.Warn("could not add creation entry to thread", "thread_id", thread.ThreadID, "error", err)
		}
		d.ingestThread(thread.ThreadID)
	}

	clarified, err := d.clarifyCommand(ctx, command)
	if err != nil {
		return tasktypes.TaskResult{}, err
	}
	command = clarified

	if d.Safety != nil && d.Safety.RequiresConfirmation(command) {
		approved, err := d.Safety.Confirm(ctx, command)
		if err != nil {
			return tasktypes.TaskResult{}, fmt.Errorf("dispatcher: safety confirmation: %w", err)
		}
		if !approved {
			result := tasktypes.TaskResult{
				Command: command,
				Route:   "",
				Status:  "refused",
				Summary: "command refused by safety gate",
				Context: tc.Meta,
			}
			d.recordMemory(command, result, tc)
			return result, ErrRefused
		}
	}

	route := Classify(ctx, d.LLM, d.Registry, command)
	handler, ok := d.Registry[route]
	if !ok {
		return tasktypes.TaskResult{}, fmt.Errorf("%w: %q", ErrUnroutable, route)
	}

	if d.handlerSem != nil {
		if err := d.handlerSem.Acquire(ctx, 1); err != nil {
			return tasktypes.TaskResult{}, fmt.Errorf("dispatcher: acquire handler slot: %w", err)
		}
		defer d.handlerSem.Release(1)
	}

	handlerCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		handlerCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	log.Info("dispatching command", "route", route, "source", tc.Source)
	result, handlerErr := handler(handlerCtx, d.Deps, command, tc)
	d.recordMemory(command, result, tc)
	return result, handlerErr
}

func (d *Dispatcher) recordMemory(command string, result tasktypes.TaskResult, tc tasktypes.TaskContext) {
	text := fmt.Sprintf("Task: %s\nRoute: %s\nSummary: %s", command, result.Route, result.Summary)
	kind := memorystore.KindTaskResult
	if tc.Source == "ambient" {
		kind = memorystore.KindDailyOp
	}
	item := memorystore.New(kind, text, map[string]any{
		"route":   result.Route,
		"payload": result.Payload,
		"status":  result.Status,
	}, []string{"dispatcher", result.Route})
	d.Memory.Add(item)

	if d.Threads == nil || tc.ThreadID == "" {
		return
	}
	thread, ok := d.Threads.Get(tc.ThreadID)
	if !ok {
		return
	}
	entryText := fmt.Sprintf("%s -> %s", strings.ToUpper(result.Route), result.Summary)
	if _, err := d.Threads.AddEntry(thread.ThreadID, entryText, "nerva", map[string]string{
		"route":     result.Route,
		"status":    result.Status,
		"memory_id": item.ID,
	}); err != nil {
		log.Warn("could not add result entry to thread", "thread_id", thread.ThreadID, "error", err)
	}
	d.ingestThread(thread.ThreadID)
}

func (d *Dispatcher) ingestThread(threadID string) {
	if d.Knowledge == nil {
		return
	}
	thread, ok := d.Threads.Get(threadID)
	if !ok {
		return
	}
	entries := make([]knowledge.ThreadEntry, 0, len(thread.Entries))
	for _, e := range thread.Entries {
		entries = append(entries, knowledge.ThreadEntry{
			EntryID:  e.EntryID,
			Text:     e.Text,
			Author:   e.Author,
			Metadata: e.Metadata,
		})
	}
	d.Knowledge.IngestThread(thread.ThreadID, thread.Title, entries)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
