package threadstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nerva/internal/logging"
)

var log = logging.New("threadstore")

// Store holds TaskThreads in memory and, when StoragePath is non-empty,
// persists the whole set as a single JSON file after every mutation —
// the same shape the original JSON-file-per-store design used, just
// with nerva's own field names.
type Store struct {
	mu          sync.RWMutex
	threads     map[string]*TaskThread
	storagePath string
}

// NewStore returns a Store. If storagePath is empty the store is
// purely in-memory; otherwise it is loaded from storagePath if it
// exists, and saved back after every mutating call.
func NewStore(storagePath string) (*Store, error) {
	s := &Store{
		threads:     map[string]*TaskThread{},
		storagePath: storagePath,
	}
	if storagePath == "" {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(storagePath), 0o755); err != nil {
		return nil, fmt.Errorf("threadstore: create storage dir: %w", err)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("threadstore: read %s: %w", s.storagePath, err)
	}
	if len(data) == 0 {
		return nil
	}
	var raw map[string]*TaskThread
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("thread store file is corrupt, starting empty", "path", s.storagePath, "error", err)
		return nil
	}
	s.threads = raw
	return nil
}

func (s *Store) save() error {
	if s.storagePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.threads, "", "  ")
	if err != nil {
		return fmt.Errorf("threadstore: marshal: %w", err)
	}
	return os.WriteFile(s.storagePath, data, 0o644)
}

// List returns threads optionally filtered by project and status,
// sorted by UpdatedAt descending.
func (s *Store) List(project, status string) []TaskThread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TaskThread, 0, len(s.threads))
	for _, t := range s.threads {
		if project != "" && t.Project != project {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

// Get returns the thread with the given id, if any.
func (s *Store) Get(threadID string) (TaskThread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[threadID]
	if !ok {
		return TaskThread{}, false
	}
	return *t, true
}

// Create opens a new thread for a project.
func (s *Store) Create(project, title, owner string, tags []string) (TaskThread, error) {
	now := time.Now().UTC()
	t := &TaskThread{
		ThreadID:  uuid.NewString(),
		Project:   project,
		Title:     title,
		Status:    "open",
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      tags,
	}

	s.mu.Lock()
	s.threads[t.ThreadID] = t
	err := s.save()
	s.mu.Unlock()

	if err != nil {
		return TaskThread{}, err
	}
	log.Info("created thread", "thread_id", t.ThreadID, "project", project)
	return *t, nil
}

// AddEntry appends an entry to an existing thread.
func (s *Store) AddEntry(threadID, text, author string, metadata map[string]string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[threadID]
	if !ok {
		return Entry{}, fmt.Errorf("threadstore: thread %q not found", threadID)
	}
	entry := t.AddEntry(text, author, metadata)
	if err := s.save(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// UpdateStatus changes a thread's status, a no-op if the thread does
// not exist.
func (s *Store) UpdateStatus(threadID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[threadID]
	if !ok {
		return nil
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return s.save()
}
