package threadstore

import "testing"

func TestStore_CreateAndList(t *testing.T) {
	s, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s.Create("home-reno", "Fix the deck", "", []string{"diy"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create("work", "Q3 report", "", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all := s.List("", "")
	if len(all) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(all))
	}

	filtered := s.List("home-reno", "")
	if len(filtered) != 1 {
		t.Fatalf("expected 1 thread for project filter, got %d", len(filtered))
	}
}

func TestStore_AddEntryAndStatus(t *testing.T) {
	s, _ := NewStore("")
	thread, _ := s.Create("home-reno", "Fix the deck", "", nil)

	entry, err := s.AddEntry(thread.ThreadID, "bought lumber", "nerva", nil)
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if entry.Text != "bought lumber" {
		t.Errorf("unexpected entry text: %q", entry.Text)
	}

	if err := s.UpdateStatus(thread.ThreadID, "done"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, ok := s.Get(thread.ThreadID)
	if !ok {
		t.Fatal("expected thread to exist")
	}
	if got.Status != "done" {
		t.Errorf("expected status done, got %q", got.Status)
	}
	if len(got.Entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(got.Entries))
	}
}

func TestStore_AddEntryUnknownThread(t *testing.T) {
	s, _ := NewStore("")
	if _, err := s.AddEntry("missing", "x", "", nil); err == nil {
		t.Error("expected error adding entry to unknown thread")
	}
}
