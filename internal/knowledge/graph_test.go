package knowledge

import "testing"

func TestGraph_RelatedDepthZeroIsJustSelf(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a", Type: "thread"})
	g.AddNode(Node{ID: "b", Type: "entry"})
	g.AddEdge("a", "HAS_ENTRY", "b")

	related := g.Related("a", 0)
	if len(related) != 1 || related[0].ID != "a" {
		t.Fatalf("expected Related(a, 0) == {a}, got %v", related)
	}
}

func TestGraph_RelatedExpandsWithDepth(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddNode(Node{ID: "c"})
	g.AddEdge("a", "NEXT", "b")
	g.AddEdge("b", "NEXT", "c")

	depth1 := g.Related("a", 1)
	if len(depth1) != 2 {
		t.Fatalf("expected 2 nodes at depth 1, got %d", len(depth1))
	}

	depth2 := g.Related("a", 2)
	if len(depth2) != 3 {
		t.Fatalf("expected 3 nodes at depth 2, got %d", len(depth2))
	}
}

func TestGraph_RelatedWalksEdgesInBothDirections(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "project"})
	g.AddNode(Node{ID: "thread"})
	g.AddEdge("project", "OWNS_THREAD", "thread")

	related := g.Related("thread", 1)
	if len(related) != 2 {
		t.Fatalf("expected the owning project to be related to its thread, got %v", related)
	}
}

func TestGraph_AddEdgeIgnoresUnknownEndpoints(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddEdge("a", "NEXT", "ghost")

	if len(g.Neighbors("a", "")) != 0 {
		t.Error("expected edge to unknown node to be dropped")
	}
}

func TestGraph_IngestThread(t *testing.T) {
	g := NewGraph()
	g.IngestThread("t1", "Fix the deck", []ThreadEntry{
		{EntryID: "e1", Text: "bought lumber", Author: "nerva", Metadata: map[string]string{"project": "home-reno"}},
	})

	thread, ok := g.Node("t1")
	if !ok || thread.Type != "thread" {
		t.Fatal("expected thread node to exist")
	}
	entries := g.Neighbors("t1", "HAS_ENTRY")
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Fatalf("expected 1 HAS_ENTRY neighbor, got %v", entries)
	}

	projThreads := g.Neighbors("project:home-reno", "OWNS_THREAD")
	if len(projThreads) != 1 || projThreads[0].ID != "t1" {
		t.Fatalf("expected project node to own thread, got %v", projThreads)
	}
}
