package graph

import (
	"errors"
	"testing"

	"github.com/soochol/flowcanvas/internal/canvas"
)

func seed(t *testing.T, m *Model, nodes ...canvas.Node) {
	t.Helper()
	for _, n := range nodes {
		if _, err := m.AddNode(n); err != nil {
			t.Fatalf("add node %s: %v", n.ID, err)
		}
	}
}

func TestAddNode_MintsID(t *testing.T) {
	m := New()
	n, err := m.AddNode(canvas.Node{Type: canvas.NodeTypeLLM})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID == "" {
		t.Fatal("expected minted node ID")
	}
}

func TestAddNode_RejectsNonContainerParent(t *testing.T) {
	m := New()
	seed(t, m, canvas.Node{ID: "llm", Type: canvas.NodeTypeLLM})

	_, err := m.AddNode(canvas.Node{ID: "child", Type: canvas.NodeTypeLLM, ParentID: "llm"})
	if err == nil {
		t.Fatal("expected error for non-container parent")
	}

	_, err = m.AddNode(canvas.Node{ID: "child", Type: canvas.NodeTypeLLM, ParentID: "ghost"})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestConnect_AutoAssignsPriorityHandle(t *testing.T) {
	m := New()
	seed(t, m,
		canvas.Node{ID: "br", Type: canvas.NodeTypeBranch, Data: canvas.NodeData{
			Cases: []canvas.BranchCase{{ID: "case1"}},
		}},
		canvas.Node{ID: "a", Type: canvas.NodeTypeLLM},
		canvas.Node{ID: "b", Type: canvas.NodeTypeLLM},
		canvas.Node{ID: "c", Type: canvas.NodeTypeLLM},
	)

	e1, err := m.Connect("br", "a", "")
	if err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if e1.SourceHandle != canvas.DefaultHandle {
		t.Fatalf("expected default handle, got %q", e1.SourceHandle)
	}

	e2, err := m.Connect("br", "b", "")
	if err != nil {
		t.Fatalf("second connect: %v", err)
	}
	if e2.SourceHandle != "case1" {
		t.Fatalf("expected case1, got %q", e2.SourceHandle)
	}

	// All handles occupied now.
	if _, err := m.Connect("br", "c", ""); !errors.Is(err, ErrHandleOccupied) {
		t.Fatalf("expected ErrHandleOccupied, got %v", err)
	}
}

func TestConnect_ExplicitHandleMustBeFree(t *testing.T) {
	m := New()
	seed(t, m,
		canvas.Node{ID: "x", Type: canvas.NodeTypeLLM},
		canvas.Node{ID: "y", Type: canvas.NodeTypeLLM},
		canvas.Node{ID: "z", Type: canvas.NodeTypeLLM},
	)

	if _, err := m.Connect("x", "y", canvas.DefaultHandle); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := m.Connect("x", "z", canvas.DefaultHandle); !errors.Is(err, ErrHandleOccupied) {
		t.Fatalf("expected ErrHandleOccupied, got %v", err)
	}
}

func TestConnect_DirectionalRules(t *testing.T) {
	m := New()
	seed(t, m,
		canvas.Node{ID: "start", Type: canvas.NodeTypeStart},
		canvas.Node{ID: "end", Type: canvas.NodeTypeEnd},
		canvas.Node{ID: "llm", Type: canvas.NodeTypeLLM},
	)

	if _, err := m.Connect("llm", "start", ""); err == nil {
		t.Fatal("expected error: start node cannot be a target")
	}
	if _, err := m.Connect("end", "llm", ""); err == nil {
		t.Fatal("expected error: end node cannot source an edge")
	}
	if _, err := m.Connect("start", "llm", ""); err != nil {
		t.Fatalf("start -> llm should connect: %v", err)
	}
}

func TestRemoveNode_CascadesEdgesAndDetachesChildren(t *testing.T) {
	m := New()
	seed(t, m,
		canvas.Node{ID: "it", Type: canvas.NodeTypeIteration, Position: canvas.Position{X: 100, Y: 200}},
		canvas.Node{ID: "child", Type: canvas.NodeTypeLLM, ParentID: "it", Position: canvas.Position{X: 10, Y: 20}},
		canvas.Node{ID: "next", Type: canvas.NodeTypeLLM},
	)
	if _, err := m.Connect("it", "next", ""); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := m.RemoveNode("it"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(m.Edges()) != 0 {
		t.Fatalf("expected incident edges removed, got %d", len(m.Edges()))
	}

	child, ok := m.Node("child")
	if !ok {
		t.Fatal("child should survive container removal")
	}
	if child.ParentID != "" {
		t.Fatal("child should be detached")
	}
	if child.Position.X != 110 || child.Position.Y != 220 {
		t.Fatalf("child should keep absolute position, got %+v", child.Position)
	}
}

func TestSubscribe_NotifiesOnMutation(t *testing.T) {
	m := New()
	count := 0
	unsub := m.Subscribe(func() { count++ })

	seed(t, m, canvas.Node{ID: "a", Type: canvas.NodeTypeLLM})
	if err := m.MoveNode("a", canvas.Position{X: 5}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 notifications, got %d", count)
	}

	unsub()
	seed(t, m, canvas.Node{ID: "b", Type: canvas.NodeTypeLLM})
	if count != 2 {
		t.Fatalf("expected no notification after unsubscribe, got %d", count)
	}
}

func TestSnapshot_ExcludesRunStatus(t *testing.T) {
	m := New()
	seed(t, m, canvas.Node{ID: "a", Type: canvas.NodeTypeLLM})

	m.SeedIdle()
	m.SetStatus("a", canvas.StatusRunning)

	snap := m.Snapshot()
	if len(snap.Nodes) != 1 || len(snap.Edges) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	// Replacing from the snapshot clears status; the snapshot itself
	// carries none.
	m.ReplaceAll(snap)
	if st := m.Status("a"); st != canvas.StatusIdle {
		t.Fatalf("expected idle after replace, got %s", st)
	}
}

func TestSetPositions_AppliesKnownIDsOnly(t *testing.T) {
	m := New()
	seed(t, m, canvas.Node{ID: "a", Type: canvas.NodeTypeLLM})

	m.SetPositions([]canvas.Node{
		{ID: "a", Position: canvas.Position{X: 42, Y: 24}, Width: 300},
		{ID: "ghost", Position: canvas.Position{X: 1, Y: 1}},
	})

	a, _ := m.Node("a")
	if a.Position.X != 42 || a.Width != 300 {
		t.Fatalf("position not applied: %+v", a)
	}
	if _, ok := m.Node("ghost"); ok {
		t.Fatal("unknown ID must not create a node")
	}
}
