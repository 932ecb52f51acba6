// Package graph holds the canonical in-memory graph of an editor session.
// The Model is the single source of truth: presentation mutates it on
// user intent, the draft syncer observes it, and the stream client drives
// run status into it. All mutation goes through Model methods.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/soochol/flowcanvas/internal/canvas"
)

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrHandleOccupied = errors.New("source handle already connected")
)

// Model is a mutex-guarded graph with subscriber notification. Run status
// is kept in a separate map scoped to one run's lifetime and is never part
// of the persisted snapshot.
type Model struct {
	mu       sync.RWMutex
	nodes    []canvas.Node
	edges    []canvas.Edge
	viewport canvas.Viewport
	status   map[string]canvas.RunStatus

	subs    map[int]func()
	nextSub int
}

// New creates an empty Model.
func New() *Model {
	return &Model{
		status: make(map[string]canvas.RunStatus),
		subs:   make(map[int]func()),
	}
}

// Subscribe registers a callback invoked after every graph mutation.
// The returned function removes the subscription. Callbacks run outside
// the model lock and may call read methods, but must not mutate the model
// synchronously.
func (m *Model) Subscribe(fn func()) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// notify snapshots the subscriber list under the lock and invokes the
// callbacks after releasing it.
func (m *Model) notify() {
	m.mu.RLock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// AddNode inserts a node, minting an ID when none is set. The parent, if
// any, must be an existing container-capable node.
func (m *Model) AddNode(n canvas.Node) (canvas.Node, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	m.mu.Lock()
	if m.findNode(n.ID) >= 0 {
		m.mu.Unlock()
		return canvas.Node{}, fmt.Errorf("duplicate node ID: %s", n.ID)
	}
	if n.ParentID != "" {
		pi := m.findNode(n.ParentID)
		if pi < 0 {
			m.mu.Unlock()
			return canvas.Node{}, fmt.Errorf("parent %s: %w", n.ParentID, ErrNodeNotFound)
		}
		if !m.nodes[pi].Type.Container() {
			m.mu.Unlock()
			return canvas.Node{}, fmt.Errorf("parent %s is not a container node", n.ParentID)
		}
	}
	m.nodes = append(m.nodes, n)
	m.mu.Unlock()
	m.notify()
	return n, nil
}

// MoveNode updates a node's position.
func (m *Model) MoveNode(id string, pos canvas.Position) error {
	m.mu.Lock()
	i := m.findNode(id)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrNodeNotFound)
	}
	m.nodes[i].Position = pos
	m.mu.Unlock()
	m.notify()
	return nil
}

// SetNodeData replaces a node's data bag.
func (m *Model) SetNodeData(id string, data canvas.NodeData) error {
	m.mu.Lock()
	i := m.findNode(id)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrNodeNotFound)
	}
	m.nodes[i].Data = data
	m.mu.Unlock()
	m.notify()
	return nil
}

// Connect creates an edge from source to target. An empty handle resolves
// through the priority rule (default first, then branch cases in order);
// an explicit handle must be free. Entry-only nodes cannot be a target and
// terminal-only nodes cannot be a source.
func (m *Model) Connect(source, target, handle string) (canvas.Edge, error) {
	m.mu.Lock()
	si := m.findNode(source)
	ti := m.findNode(target)
	if si < 0 {
		m.mu.Unlock()
		return canvas.Edge{}, fmt.Errorf("source %s: %w", source, ErrNodeNotFound)
	}
	if ti < 0 {
		m.mu.Unlock()
		return canvas.Edge{}, fmt.Errorf("target %s: %w", target, ErrNodeNotFound)
	}
	src := m.nodes[si]
	if src.Type.TerminalOnly() {
		m.mu.Unlock()
		return canvas.Edge{}, fmt.Errorf("node %s (%s) cannot source an edge", source, src.Type)
	}
	if tgt := m.nodes[ti]; tgt.Type.EntryOnly() {
		m.mu.Unlock()
		return canvas.Edge{}, fmt.Errorf("node %s (%s) cannot be a target", target, tgt.Type)
	}

	if handle == "" {
		h, free := canvas.PriorityHandle(&src, m.edges)
		if !free {
			m.mu.Unlock()
			return canvas.Edge{}, fmt.Errorf("node %s: %w", source, ErrHandleOccupied)
		}
		handle = h
	} else {
		for _, e := range m.edges {
			eh := e.SourceHandle
			if eh == "" {
				eh = canvas.DefaultHandle
			}
			if e.Source == source && eh == handle {
				m.mu.Unlock()
				return canvas.Edge{}, fmt.Errorf("node %s handle %s: %w", source, handle, ErrHandleOccupied)
			}
		}
	}

	edge := canvas.Edge{
		ID:           uuid.NewString(),
		Source:       source,
		Target:       target,
		SourceHandle: handle,
	}
	m.edges = append(m.edges, edge)
	m.mu.Unlock()
	m.notify()
	return edge, nil
}

// RemoveNode deletes a node together with its incident edges. Children of
// a removed container are detached, keeping their absolute position.
func (m *Model) RemoveNode(id string) error {
	m.mu.Lock()
	i := m.findNode(id)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrNodeNotFound)
	}
	parent := m.nodes[i]
	m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)

	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	m.edges = kept

	for j := range m.nodes {
		if m.nodes[j].ParentID == id {
			m.nodes[j].ParentID = ""
			m.nodes[j].Position.X += parent.Position.X
			m.nodes[j].Position.Y += parent.Position.Y
		}
	}
	delete(m.status, id)
	m.mu.Unlock()
	m.notify()
	return nil
}

// RemoveEdge deletes an edge by ID.
func (m *Model) RemoveEdge(id string) error {
	m.mu.Lock()
	for i, e := range m.edges {
		if e.ID == id {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			m.mu.Unlock()
			m.notify()
			return nil
		}
	}
	m.mu.Unlock()
	return fmt.Errorf("%s: %w", id, ErrEdgeNotFound)
}

// SetViewport stores the canvas pan/zoom state.
func (m *Model) SetViewport(v canvas.Viewport) {
	m.mu.Lock()
	m.viewport = v
	m.mu.Unlock()
	m.notify()
}

// Viewport returns the current pan/zoom state.
func (m *Model) Viewport() canvas.Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// SetPositions applies freshly computed positions (and sizes) to matching
// nodes in a single mutation, as produced by a layout pass. Unknown IDs
// are ignored.
func (m *Model) SetPositions(positioned []canvas.Node) {
	m.mu.Lock()
	byID := make(map[string]canvas.Node, len(positioned))
	for _, n := range positioned {
		byID[n.ID] = n
	}
	for i := range m.nodes {
		if p, ok := byID[m.nodes[i].ID]; ok {
			m.nodes[i].Position = p.Position
			m.nodes[i].Width = p.Width
			m.nodes[i].Height = p.Height
		}
	}
	m.mu.Unlock()
	m.notify()
}

// ReplaceAll swaps in a whole snapshot, e.g. on draft load or version
// restore. Run statuses are cleared.
func (m *Model) ReplaceAll(s canvas.Snapshot) {
	m.mu.Lock()
	m.nodes = append([]canvas.Node(nil), s.Nodes...)
	m.edges = append([]canvas.Edge(nil), s.Edges...)
	m.viewport = s.Viewport
	m.status = make(map[string]canvas.RunStatus)
	m.mu.Unlock()
	m.notify()
}

// Snapshot returns a deep-enough copy of the persisted graph state. Run
// status is intentionally excluded.
func (m *Model) Snapshot() canvas.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return canvas.Snapshot{
		Nodes:    append([]canvas.Node(nil), m.nodes...),
		Edges:    append([]canvas.Edge(nil), m.edges...),
		Viewport: m.viewport,
	}
}

// Nodes returns a copy of the node list.
func (m *Model) Nodes() []canvas.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]canvas.Node(nil), m.nodes...)
}

// Edges returns a copy of the edge list.
func (m *Model) Edges() []canvas.Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]canvas.Edge(nil), m.edges...)
}

// Node returns the node with the given ID.
func (m *Model) Node(id string) (canvas.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.findNode(id); i >= 0 {
		return m.nodes[i], true
	}
	return canvas.Node{}, false
}

func (m *Model) findNode(id string) int {
	for i := range m.nodes {
		if m.nodes[i].ID == id {
			return i
		}
	}
	return -1
}
