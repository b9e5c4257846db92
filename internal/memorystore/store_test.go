package memorystore

import (
	"testing"
	"time"
)

func TestStore_AddAndAll(t *testing.T) {
	s := NewStore()
	s.Add(New(KindQA, "what time is it", nil, nil))
	s.Add(New(KindTodo, "buy milk", nil, []string{"errand"}))

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
}

func TestStore_SearchTextContains(t *testing.T) {
	s := NewStore()
	s.Add(New(KindQA, "What is the capital of France?", nil, nil))
	s.Add(New(KindQA, "How tall is Mount Everest?", nil, nil))

	results := s.SearchTextContains("capital", 10)
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
}

func TestStore_Get(t *testing.T) {
	s := NewStore()
	item := New(KindQA, "what time is it", nil, nil)
	s.Add(item)

	got, ok := s.Get(item.ID)
	if !ok || got.Text != item.Text {
		t.Fatalf("Get(%q) = %+v, %v", item.ID, got, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestStore_Search_RequiresAllTokens(t *testing.T) {
	s := NewStore()
	s.Add(New(KindQA, "The capital of France is Paris", nil, nil))
	s.Add(New(KindQA, "France has great food", nil, nil))

	results := s.Search("france capital", "", nil, 10)
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
}

func TestStore_Search_FiltersByKindAndRanksByRecency(t *testing.T) {
	s := NewStore()
	older := New(KindTodo, "buy milk today", nil, nil)
	s.Add(older)
	newer := New(KindTodo, "buy bread today", nil, nil)
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	s.Add(newer)
	s.Add(New(KindQA, "today is Tuesday", nil, nil))

	results := s.Search("today", KindTodo, nil, 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 todo matches, got %d", len(results))
	}
	if results[0].ID != newer.ID {
		t.Errorf("expected newest item first")
	}
}

func TestStore_SearchByTags(t *testing.T) {
	s := NewStore()
	s.Add(New(KindTodo, "a", nil, []string{"home"}))
	s.Add(New(KindTodo, "b", nil, []string{"work"}))
	s.Add(New(KindTodo, "c", nil, []string{"home", "urgent"}))

	results := s.SearchByTags([]string{"home"}, 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
}

func TestStore_SearchByVector_RanksBySimilarity(t *testing.T) {
	s := NewStore()
	a := New(KindQA, "aligned", nil, nil)
	a.Vector = []float64{1, 0, 0}
	b := New(KindQA, "orthogonal", nil, nil)
	b.Vector = []float64{0, 1, 0}
	s.Add(a)
	s.Add(b)

	results := s.SearchByVector([]float64{1, 0, 0}, 10)
	if len(results) != 1 {
		t.Fatalf("expected 1 positively-similar result, got %d", len(results))
	}
	if results[0].Item.ID != a.ID {
		t.Errorf("expected aligned item to rank first")
	}
}

func TestStore_SearchByVector_TruncatesMismatchedLength(t *testing.T) {
	s := NewStore()
	item := New(KindQA, "short vector", nil, nil)
	item.Vector = []float64{1, 0}
	s.Add(item)

	results := s.SearchByVector([]float64{1, 0, 1, 1}, 10)
	if len(results) != 1 {
		t.Fatalf("expected similarity computed over truncated length, got %d results", len(results))
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Add(New(KindSystem, "boot", nil, nil))
	s.Clear()
	if len(s.All()) != 0 {
		t.Error("expected store to be empty after Clear")
	}
}
