// Package editor wires one editing session together: the graph model,
// the draft syncer observing it, and run execution over the stream
// client. The presentation layer drives a Session and renders the model.
package editor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/client"
	"github.com/soochol/flowcanvas/internal/draft"
	"github.com/soochol/flowcanvas/internal/graph"
	"github.com/soochol/flowcanvas/internal/layout"
	"github.com/soochol/flowcanvas/internal/stream"
)

// Session is one open graph in the editor.
type Session struct {
	GraphID string
	Model   *graph.Model

	api    *client.Client
	syncer *draft.Syncer
	hooks  stream.Hooks

	cancelRun context.CancelFunc
}

// Config assembles a Session.
type Config struct {
	API   *client.Client
	Sync  draft.Config
	Hooks stream.Hooks
}

// Open loads the draft for graphID and starts draft synchronization.
// A load failure leaves nothing observing the model, so an empty editor
// cannot clobber the stored draft.
func Open(ctx context.Context, graphID string, cfg Config) (*Session, error) {
	model := graph.New()
	syncer := draft.NewSyncer(model, cfg.API.DraftStore(), cfg.Sync)
	if err := syncer.Start(ctx, graphID); err != nil {
		return nil, err
	}
	return &Session{
		GraphID: graphID,
		Model:   model,
		api:     cfg.API,
		syncer:  syncer,
		hooks:   cfg.Hooks,
	}, nil
}

// Arrange runs the layout pass over the current graph and applies the
// resulting positions in one mutation.
func (s *Session) Arrange() {
	s.Model.SetPositions(layout.Arrange(s.Model.Nodes(), s.Model.Edges()))
}

// Run executes the workflow with the given inputs, pumping the event
// stream into the model until it ends or fails. When the run spawns a
// background task (a task_id in the inputs' files preprocessing, for
// example), its progress subscription is pumped concurrently.
func (s *Session) Run(ctx context.Context, inputs map[string]any, files []client.Upload) (*stream.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel
	defer func() { s.cancelRun = nil }()

	body, err := s.api.OpenRunStream(runCtx, s.GraphID, inputs, files)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open run stream: %w", err)
	}

	g, gCtx := errgroup.WithContext(runCtx)

	var result *stream.Result
	g.Go(func() error {
		defer body.Close()
		res, err := stream.Pump(gCtx, s.Model, body, s.hooks)
		if err != nil {
			return err
		}
		result = res
		return nil
	})

	if taskID, ok := inputs["task_id"].(string); ok && taskID != "" {
		g.Go(func() error {
			return s.api.SubscribeProgress(gCtx, taskID, func(ev canvas.ProgressEvent) {
				slog.Info("task progress", "task", taskID, "progress", ev.Progress, "status", ev.Status)
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// StopRun abandons an in-flight run. Nodes left running are reset by the
// next run's idle seed.
func (s *Session) StopRun() {
	if s.cancelRun != nil {
		s.cancelRun()
	}
}

// Save flushes the draft immediately.
func (s *Session) Save() {
	s.syncer.TriggerSave()
}

// Close tears the session down: pending draft writes are cancelled and
// any in-flight run is abandoned.
func (s *Session) Close() {
	s.StopRun()
	s.syncer.Close()
}
