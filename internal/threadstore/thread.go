// Package threadstore tracks project-scoped task threads: running,
// append-only conversations about a piece of work that the dispatcher
// writes back into after every dispatch.
package threadstore

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a single update inside a TaskThread.
type Entry struct {
	EntryID   string            `json:"entry_id"`
	Timestamp time.Time         `json:"timestamp"`
	Author    string            `json:"author"`
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func newEntry(text, author string, metadata map[string]string) Entry {
	if author == "" {
		author = "nerva"
	}
	return Entry{
		EntryID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Author:    author,
		Text:      text,
		Metadata:  metadata,
	}
}

// TaskThread is a project or task thread with a running history.
type TaskThread struct {
	ThreadID  string    `json:"thread_id"`
	Project   string    `json:"project"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Owner     string    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []string  `json:"tags,omitempty"`
	Entries   []Entry   `json:"entries"`
}

// AddEntry appends an entry and bumps UpdatedAt.
func (t *TaskThread) AddEntry(text, author string, metadata map[string]string) Entry {
	entry := newEntry(text, author, metadata)
	t.Entries = append(t.Entries, entry)
	t.UpdatedAt = entry.Timestamp
	return entry
}
