// Package draft keeps the in-memory graph reconciled with the persisted
// draft. The syncer loads the stored snapshot once, gates every persist
// until that load finishes, and then pushes debounced whole-snapshot
// writes back through a Store.
package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/graph"
)

// Store abstracts the draft persistence API: whole-snapshot load and
// replace, no partial updates.
type Store interface {
	Load(ctx context.Context, graphID string) (canvas.Snapshot, error)
	Save(ctx context.Context, graphID string, snap canvas.Snapshot, aux Settings) error
}

// Settings are the auxiliary editor settings sent alongside every saved
// snapshot.
type Settings struct {
	Features     map[string]any       `json:"features,omitempty"`
	EnvVariables []canvas.EnvVariable `json:"envVariables,omitempty"`
}

// State is the syncer's load gate.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

// Tuning defaults. The quiet period and ceiling are product-tuned values,
// kept configurable.
const (
	DefaultDebounce = 800 * time.Millisecond
	DefaultMaxWait  = 5 * time.Minute
)

// Config tunes the debounce cycle. Zero values take the defaults.
type Config struct {
	// Debounce is the trailing-edge quiet period after the last mutation.
	Debounce time.Duration
	// MaxWait forces a flush under continuous mutation even if the quiet
	// period never elapses.
	MaxWait time.Duration
	// OnViewport, when set, receives the loaded viewport so the
	// presentation layer can restore pan/zoom.
	OnViewport func(canvas.Viewport)
	// SettingsFn, when set, supplies the auxiliary settings attached to
	// each save, read at flush time.
	SettingsFn func() Settings
}

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("draft syncer closed")

// Syncer observes a graph model and persists it. One Syncer serves one
// editor session for one graph; switching graphs means Close and a fresh
// Syncer, which is what guarantees no cross-session writes.
type Syncer struct {
	store Store
	model *graph.Model
	cfg   Config

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	state       State
	graphID     string
	timer       *time.Timer
	firstDirty  time.Time
	unsubscribe func()
	closed      bool
}

// NewSyncer creates a Syncer over the given model and store.
func NewSyncer(model *graph.Model, store Store, cfg Config) *Syncer {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	return &Syncer{store: store, model: model, cfg: cfg}
}

// Start loads the persisted draft, applies it to the model, and begins
// observing mutations. A draft with zero nodes is a new graph, not an
// error: it is replaced by a minimal default snapshot. Load failures
// leave the syncer gated; no mutation will be persisted.
func (s *Syncer) Start(ctx context.Context, graphID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateUnloaded {
		s.mu.Unlock()
		return fmt.Errorf("syncer already started for graph %s", s.graphID)
	}
	s.state = StateLoading
	s.graphID = graphID
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	snap, err := s.store.Load(ctx, graphID)
	if err != nil {
		s.mu.Lock()
		s.state = StateUnloaded
		s.mu.Unlock()
		return fmt.Errorf("load draft %s: %w", graphID, err)
	}
	if len(snap.Nodes) == 0 {
		snap = DefaultSnapshot()
	}

	// Apply before opening the gate: the ReplaceAll notification must not
	// schedule a save of the snapshot we just loaded.
	s.model.ReplaceAll(snap)
	if s.cfg.OnViewport != nil {
		s.cfg.OnViewport(snap.Viewport)
	}

	s.mu.Lock()
	s.state = StateLoaded
	s.unsubscribe = s.model.Subscribe(s.onMutation)
	s.mu.Unlock()
	return nil
}

// State returns the current load gate state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TriggerSave flushes immediately, cancelling any pending debounce.
func (s *Syncer) TriggerSave() {
	s.mu.Lock()
	if s.state != StateLoaded || s.closed {
		s.mu.Unlock()
		return
	}
	s.clearTimerLocked()
	s.mu.Unlock()
	s.flush()
}

// Close cancels pending persists and stops observation. Safe to call more
// than once. In-flight mutations after Close are never persisted.
func (s *Syncer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.clearTimerLocked()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// onMutation schedules a trailing-edge debounced flush. Under continuous
// mutation the max-wait ceiling caps how long the flush can keep sliding.
func (s *Syncer) onMutation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded || s.closed {
		return
	}

	now := time.Now()
	if s.timer == nil {
		s.firstDirty = now
	} else {
		s.timer.Stop()
	}

	delay := s.cfg.Debounce
	if ceiling := s.firstDirty.Add(s.cfg.MaxWait).Sub(now); ceiling < delay {
		delay = ceiling
		if delay < 0 {
			delay = 0
		}
	}
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		s.timer = nil
		if s.closed || s.state != StateLoaded {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.flush()
	})
}

// flush reads the model (including the viewport as it is right now, not
// as it was when the flush was scheduled) and sends the whole snapshot.
// Persist failures are logged and swallowed: the next mutation's debounce
// cycle retries implicitly, which is the deliberate best-effort policy
// for a high-frequency mutation source.
func (s *Syncer) flush() {
	s.mu.Lock()
	ctx := s.ctx
	graphID := s.graphID
	s.mu.Unlock()

	snap := s.model.Snapshot()
	var aux Settings
	if s.cfg.SettingsFn != nil {
		aux = s.cfg.SettingsFn()
	}

	if err := s.store.Save(ctx, graphID, snap, aux); err != nil {
		slog.Warn("draft save failed", "graph", graphID, "err", err)
	}
}

func (s *Syncer) clearTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// DefaultSnapshot is the seed for a brand-new graph: a single start node
// at the canvas origin.
func DefaultSnapshot() canvas.Snapshot {
	return canvas.Snapshot{
		Nodes: []canvas.Node{{
			ID:       uuid.NewString(),
			Type:     canvas.NodeTypeStart,
			Position: canvas.Position{X: 80, Y: 280},
			Data:     canvas.NodeData{Title: "Start"},
		}},
		Viewport: canvas.Viewport{Zoom: 1},
	}
}
