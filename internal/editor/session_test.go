package editor

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/soochol/flowcanvas/internal/api"
	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/client"
	"github.com/soochol/flowcanvas/internal/draft"
	"github.com/soochol/flowcanvas/internal/repository"
	"github.com/soochol/flowcanvas/internal/stream"
	"github.com/soochol/flowcanvas/internal/version"
)

// sessionEnv runs a session against the devserver end to end.
type sessionEnv struct {
	server *api.Server
	drafts *repository.MemoryDrafts
	api    *client.Client
}

func newSessionEnv(t *testing.T) *sessionEnv {
	t.Helper()
	drafts := repository.NewMemoryDrafts()
	srv := api.NewServer(drafts)
	srv.SetVersionService(version.NewService(repository.NewMemoryVersions(), drafts, 0))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &sessionEnv{
		server: srv,
		drafts: drafts,
		api:    client.New(ts.URL, nil),
	}
}

func TestOpen_NewGraphSeedsStartNode(t *testing.T) {
	env := newSessionEnv(t)

	s, err := Open(context.Background(), "g1", Config{
		API:  env.api,
		Sync: draft.Config{Debounce: 20 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	nodes := s.Model.Nodes()
	if len(nodes) != 1 || nodes[0].Type != canvas.NodeTypeStart {
		t.Fatalf("expected seeded start node, got %+v", nodes)
	}
}

func TestSession_MutationPersistsThroughDevserver(t *testing.T) {
	env := newSessionEnv(t)

	s, err := Open(context.Background(), "g1", Config{
		API:  env.api,
		Sync: draft.Config{Debounce: 20 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := s.Model.AddNode(canvas.Node{ID: "llm1", Type: canvas.NodeTypeLLM}); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Save()

	d, err := env.drafts.Get(context.Background(), "g1")
	if err != nil {
		t.Fatalf("draft not persisted: %v", err)
	}
	found := false
	for _, n := range d.Snapshot.Nodes {
		if n.ID == "llm1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("mutation missing from persisted draft: %+v", d.Snapshot.Nodes)
	}
}

func TestSession_RunDrivesStatuses(t *testing.T) {
	env := newSessionEnv(t)
	env.server.Runs().Register("g1", []canvas.NodeRunEvent{
		{Type: canvas.EventNodeStart, NodeID: "llm1"},
		{Type: canvas.EventNodeFinish, NodeID: "llm1"},
		{Type: canvas.EventWorkflowFinish, Payload: map[string]any{"output": map[string]any{"text": "done"}}},
	})

	s, err := Open(context.Background(), "g1", Config{
		API:  env.api,
		Sync: draft.Config{Debounce: 20 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := s.Model.AddNode(canvas.Node{ID: "llm1", Type: canvas.NodeTypeLLM}); err != nil {
		t.Fatalf("add: %v", err)
	}

	res, err := s.Run(context.Background(), map[string]any{"q": "hi"}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Output["text"] != "done" {
		t.Fatalf("unexpected output: %+v", res.Output)
	}
	if st := s.Model.Status("llm1"); st != canvas.StatusSuccess {
		t.Fatalf("expected success status, got %s", st)
	}
}

func TestSession_RunFailurePropagates(t *testing.T) {
	env := newSessionEnv(t)
	env.server.Runs().Register("g1", []canvas.NodeRunEvent{
		{Type: canvas.EventNodeStart, NodeID: "llm1"},
		{Type: canvas.EventError, NodeID: "llm1", Payload: map[string]any{"error": "timeout"}},
	})

	s, err := Open(context.Background(), "g1", Config{
		API:  env.api,
		Sync: draft.Config{Debounce: 20 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := s.Model.AddNode(canvas.Node{ID: "llm1", Type: canvas.NodeTypeLLM}); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = s.Run(context.Background(), nil, nil)
	var fatal *stream.FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected FatalError, got %v", err)
	}
	if st := s.Model.Status("llm1"); st != canvas.StatusFailure {
		t.Fatalf("expected failure status, got %s", st)
	}
}

func TestSession_RunWithBackgroundTaskProgress(t *testing.T) {
	env := newSessionEnv(t)
	env.server.Runs().Register("g1", []canvas.NodeRunEvent{
		{Type: canvas.EventWorkflowFinish},
	})
	env.server.Tasks().Register("t1", []canvas.ProgressEvent{
		{Progress: 0.5, Status: "running"},
		{Progress: 1, Status: "completed"},
	})

	s, err := Open(context.Background(), "g1", Config{
		API:  env.api,
		Sync: draft.Config{Debounce: 20 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := s.Run(context.Background(), map[string]any{"task_id": "t1"}, nil); err != nil {
		t.Fatalf("run with progress subscription: %v", err)
	}
}

func TestSession_ArrangeAppliesLayout(t *testing.T) {
	env := newSessionEnv(t)

	s, err := Open(context.Background(), "g1", Config{
		API:  env.api,
		Sync: draft.Config{Debounce: 20 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	start := s.Model.Nodes()[0]
	if _, err := s.Model.AddNode(canvas.Node{ID: "llm1", Type: canvas.NodeTypeLLM, Position: canvas.Position{X: -500, Y: 900}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Model.Connect(start.ID, "llm1", ""); err != nil {
		t.Fatalf("connect: %v", err)
	}

	s.Arrange()

	a, _ := s.Model.Node(start.ID)
	b, _ := s.Model.Node("llm1")
	if b.Position.X <= a.Position.X {
		t.Fatalf("downstream node should sit to the right: %v vs %v", b.Position.X, a.Position.X)
	}
}
