// Package layout computes canvas positions for a workflow graph. Arrange
// is pure and deterministic: it never touches the network and running it
// twice over the same graph produces the same positions, so an "arrange"
// action can be applied live without debouncing.
package layout

import (
	"log/slog"
	"sort"

	"github.com/soochol/flowcanvas/internal/canvas"
)

const (
	// Default footprint of an ordinary node.
	DefaultNodeWidth  = 244
	DefaultNodeHeight = 98

	// Separation between layers and between nodes within a layer, kept
	// generous so edges stay legible.
	RankSep = 140
	NodeSep = 64

	// Expandable node sizing: padding around the nested bounding box,
	// clamp range, and the width scale applied after clamping.
	ExpandPadding    = 100
	MinExpandWidth   = 600
	MaxExpandWidth   = 1800
	MinExpandHeight  = 300
	MaxExpandHeight  = 1200
	ExpandWidthScale = 0.8

	// Orphan packing below the connected layout.
	OrphanGapX   = 40
	OrphanGapY   = 60
	MinPackWidth = 1000
)

// Arrange returns new positions for the given nodes. Connected nodes are
// placed by a layered left-to-right pass; orphans are packed row-major
// below the connected bounding box. Annotation nodes and nodes parented
// into a container keep their position and are returned unchanged.
func Arrange(nodes []canvas.Node, edges []canvas.Edge) []canvas.Node {
	out := append([]canvas.Node(nil), nodes...)

	incident := make(map[string]bool)
	for _, e := range edges {
		incident[e.Source] = true
		incident[e.Target] = true
	}

	index := make(map[string]int, len(out))
	member := make(map[string]bool)
	var connected, orphans []string
	for i := range out {
		n := &out[i]
		index[n.ID] = i
		if n.Type.Annotation() || n.ParentID != "" {
			continue
		}
		if incident[n.ID] {
			connected = append(connected, n.ID)
			member[n.ID] = true
		} else {
			orphans = append(orphans, n.ID)
		}
	}
	sort.Strings(connected)
	sort.Strings(orphans)

	sizes := make(map[string]size, len(connected))
	for _, id := range connected {
		n := &out[index[id]]
		s, err := footprint(n)
		if err != nil {
			slog.Warn("layout: falling back to default footprint", "node", id, "err", err)
		}
		sizes[id] = s
		if n.Type.Expandable() {
			out[index[id]].Width = s.w
			out[index[id]].Height = s.h
		}
	}

	box := placeConnected(out, index, connected, edges, member, sizes)
	packOrphans(out, index, orphans, box)
	return out
}

// bounds tracks the connected layout's bounding box in top-left space.
type bounds struct {
	minX, maxX, maxY float64
	empty            bool
}

// placeConnected runs the layered pass and writes top-left positions into
// out. Engine coordinates are centered per node and converted at the end.
func placeConnected(out []canvas.Node, index map[string]int, connected []string, edges []canvas.Edge, member map[string]bool, sizes map[string]size) bounds {
	if len(connected) == 0 {
		return bounds{empty: true}
	}

	adj := buildAdjacency(connected, edges, member)
	layers := adj.orderLayers(adj.ranks())

	// Column centers: each layer is as wide as its widest node.
	colWidth := make([]float64, len(layers))
	for li, layer := range layers {
		for _, id := range layer {
			if w := sizes[id].w; w > colWidth[li] {
				colWidth[li] = w
			}
		}
	}

	b := bounds{}
	first := true
	x := 0.0
	for li, layer := range layers {
		if li > 0 {
			x += colWidth[li-1] + RankSep
		}
		cx := x + colWidth[li]/2

		total := 0.0
		for _, id := range layer {
			total += sizes[id].h
		}
		total += NodeSep * float64(len(layer)-1)

		cursor := -total / 2
		for _, id := range layer {
			s := sizes[id]
			cy := cursor + s.h/2
			cursor += s.h + NodeSep

			n := &out[index[id]]
			n.Position = canvas.Position{X: cx - s.w/2, Y: cy - s.h/2}

			if first {
				b.minX, b.maxX = n.Position.X, n.Position.X+s.w
				b.maxY = n.Position.Y + s.h
				first = false
				continue
			}
			if n.Position.X < b.minX {
				b.minX = n.Position.X
			}
			if r := n.Position.X + s.w; r > b.maxX {
				b.maxX = r
			}
			if bot := n.Position.Y + s.h; bot > b.maxY {
				b.maxY = bot
			}
		}
	}
	return b
}

// packOrphans lays disconnected nodes row-major below the connected
// bounding box, wrapping once a row exceeds the connected width (with a
// floor so packing works even when the connected set is empty or narrow).
func packOrphans(out []canvas.Node, index map[string]int, orphans []string, b bounds) {
	if len(orphans) == 0 {
		return
	}

	startX, startY := 0.0, 0.0
	width := float64(MinPackWidth)
	if !b.empty {
		startX = b.minX
		startY = b.maxY + OrphanGapY
		if w := b.maxX - b.minX; w > width {
			width = w
		}
	}

	x, y, rowH := startX, startY, 0.0
	for _, id := range orphans {
		n := &out[index[id]]
		s := nodeSize(n)
		if x > startX && x+s.w-startX > width {
			x = startX
			y += rowH + OrphanGapY
			rowH = 0
		}
		n.Position = canvas.Position{X: x, Y: y}
		x += s.w + OrphanGapX
		if s.h > rowH {
			rowH = s.h
		}
	}
}
