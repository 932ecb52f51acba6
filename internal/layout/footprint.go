package layout

import (
	"fmt"

	"github.com/soochol/flowcanvas/internal/canvas"
)

// size is a node's effective footprint used for placement.
type size struct {
	w, h float64
}

// nodeSize returns the node's declared size, falling back to the default
// footprint of ordinary nodes.
func nodeSize(n *canvas.Node) size {
	s := size{w: DefaultNodeWidth, h: DefaultNodeHeight}
	if n.Width > 0 {
		s.w = n.Width
	}
	if n.Height > 0 {
		s.h = n.Height
	}
	return s
}

// footprint computes the effective footprint of a node for layout. For
// expandable nodes it derives the footprint from the nested subgraph's
// reachable content; any failure there falls back to the node's own size
// so a malformed subgraph never aborts the layout pass.
func footprint(n *canvas.Node) (size, error) {
	if !n.Type.Expandable() {
		return nodeSize(n), nil
	}
	s, err := expandedFootprint(n.Data.Subgraph)
	if err != nil {
		return nodeSize(n), err
	}
	return s, nil
}

// expandedFootprint sizes an expandable node from the bounding box of the
// nested nodes reachable from the subgraph entry. Unreachable nested
// nodes never inflate the parent.
func expandedFootprint(sg *canvas.Subgraph) (size, error) {
	if sg == nil {
		return size{}, fmt.Errorf("no nested subgraph")
	}
	reach := reachable(sg)
	if len(reach) == 0 {
		return size{}, fmt.Errorf("entry %q not found in nested subgraph", sg.EntryID)
	}

	minX, minY := reach[0].Position.X, reach[0].Position.Y
	maxX, maxY := minX, minY
	for _, n := range reach {
		s := nodeSize(&n)
		if n.Position.X < minX {
			minX = n.Position.X
		}
		if n.Position.Y < minY {
			minY = n.Position.Y
		}
		if x := n.Position.X + s.w; x > maxX {
			maxX = x
		}
		if y := n.Position.Y + s.h; y > maxY {
			maxY = y
		}
	}

	w := (maxX - minX) + 2*ExpandPadding
	h := (maxY - minY) + 2*ExpandPadding
	w = clamp(w, MinExpandWidth, MaxExpandWidth) * ExpandWidthScale
	h = clamp(h, MinExpandHeight, MaxExpandHeight)
	return size{w: w, h: h}, nil
}

// reachable walks the nested subgraph breadth-first from the entry node
// and returns the visited nodes.
func reachable(sg *canvas.Subgraph) []canvas.Node {
	byID := make(map[string]canvas.Node, len(sg.Nodes))
	for _, n := range sg.Nodes {
		byID[n.ID] = n
	}
	if _, ok := byID[sg.EntryID]; !ok {
		return nil
	}
	out := make(map[string][]string)
	for _, e := range sg.Edges {
		out[e.Source] = append(out[e.Source], e.Target)
	}

	visited := map[string]bool{sg.EntryID: true}
	queue := []string{sg.EntryID}
	var nodes []canvas.Node
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		nodes = append(nodes, byID[id])
		for _, next := range out[id] {
			if _, ok := byID[next]; !ok || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return nodes
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
