// Package connect computes the transient drag-connection preview: which
// node a dragged payload would attach to, on which side, and through
// which handle. Track is pure; it proposes without mutating the graph,
// and the highlighted handle travels on the returned State instead of any
// ambient global.
package connect

import (
	"math"

	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/layout"
)

// PayloadNode is the drag payload kind emitted when a node block is
// dragged from the palette or the canvas. Any other payload clears the
// preview.
const PayloadNode = "application/x-canvas-node"

// Defaults for Options zero values. The radius is product-tuned and kept
// configurable rather than fixed.
const (
	DefaultRadius = 500
	DefaultGap    = 100
)

// Side is the side of the nearest node a connection would attach to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// State is the preview result. The zero value means "no preview".
type State struct {
	NearestID string
	Position  *canvas.Position
	Side      Side
	// Handle is the source handle the drop would connect through, set
	// when the nearest node is branch-capable and the pointer is on its
	// outgoing side. NewCase marks the placeholder returned when every
	// declared handle is occupied.
	Handle  string
	NewCase bool
}

// Options tunes the proximity search. Zero values take the defaults.
type Options struct {
	Radius float64
	Gap    float64
}

// ToGraph converts a screen-space pointer to graph coordinates under the
// given viewport.
func ToGraph(v canvas.Viewport, screen canvas.Position) canvas.Position {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return canvas.Position{
		X: (screen.X - v.X) / zoom,
		Y: (screen.Y - v.Y) / zoom,
	}
}

// Track proposes an insertion for a dragged payload at the given
// graph-space pointer. It returns the zero State when the payload is not
// a graph node, no node is within the radius, or the directional rules
// reject the side (entry-only nodes never accept on their left,
// terminal-only nodes never offer on their right).
func Track(payload string, ptr canvas.Position, nodes []canvas.Node, edges []canvas.Edge, opts Options) State {
	if payload != PayloadNode {
		return State{}
	}
	radius := opts.Radius
	if radius == 0 {
		radius = DefaultRadius
	}
	gap := opts.Gap
	if gap == 0 {
		gap = DefaultGap
	}

	nearest, ncx := nearestNode(ptr, nodes, radius)
	if nearest == nil {
		return State{}
	}

	side := SideLeft
	if ptr.X > ncx {
		side = SideRight
	}

	// Entry-only nodes are never a target, terminal-only never a source.
	if nearest.Type.EntryOnly() && side == SideLeft {
		return State{}
	}
	if nearest.Type.TerminalOnly() && side == SideRight {
		return State{}
	}

	w, _ := footprint(nearest)
	pos := canvas.Position{Y: nearest.Position.Y}
	if side == SideRight {
		pos.X = nearest.Position.X + w + gap
	} else {
		pos.X = nearest.Position.X - w - gap
	}

	st := State{NearestID: nearest.ID, Position: &pos, Side: side}
	if side == SideRight && nearest.Type.Branching() {
		handle, free := canvas.PriorityHandle(nearest, edges)
		st.Handle = handle
		st.NewCase = !free
	}
	return st
}

// nearestNode returns the connectable node whose footprint center is
// closest to the pointer within radius, plus that center's x coordinate.
func nearestNode(ptr canvas.Position, nodes []canvas.Node, radius float64) (*canvas.Node, float64) {
	var best *canvas.Node
	bestDist := radius
	bestCX := 0.0
	for i := range nodes {
		n := &nodes[i]
		if n.Type.Annotation() || n.ParentID != "" {
			continue
		}
		w, h := footprint(n)
		cx := n.Position.X + w/2
		cy := n.Position.Y + h/2
		d := math.Hypot(ptr.X-cx, ptr.Y-cy)
		if d <= bestDist {
			best, bestDist, bestCX = n, d, cx
		}
	}
	return best, bestCX
}

func footprint(n *canvas.Node) (w, h float64) {
	w, h = layout.DefaultNodeWidth, layout.DefaultNodeHeight
	if n.Width > 0 {
		w = n.Width
	}
	if n.Height > 0 {
		h = n.Height
	}
	return w, h
}
