// Package memorystore is nerva's append-only knowledge base: every
// Q&A, TODO, repo insight, daily-ops summary, and task result the
// assistant produces gets recorded here and can be recalled by text,
// tag, or vector search.
package memorystore

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a MemoryItem.
type Kind string

const (
	KindQA         Kind = "q_and_a"
	KindTodo       Kind = "todo"
	KindRepoInsight Kind = "repo_insight"
	KindDailyOp    Kind = "daily_op"
	KindSystem     Kind = "system"
	KindTaskResult Kind = "task_result"
)

// MemoryItem is a single entry in the store.
type MemoryItem struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time
	Text      string
	Meta      map[string]any
	Vector    []float64
	Tags      []string
}

// New creates a MemoryItem with a fresh id and the current time.
func New(kind Kind, text string, meta map[string]any, tags []string) MemoryItem {
	if meta == nil {
		meta = map[string]any{}
	}
	return MemoryItem{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Text:      text,
		Meta:      meta,
		Tags:      tags,
	}
}
