package layout

import (
	"sort"

	"github.com/soochol/flowcanvas/internal/canvas"
)

// adjacency indexes the connected subgraph for ranking: children/parents
// maps plus a deterministic topological order (queue kept sorted so equal
// candidates always resolve the same way).
type adjacency struct {
	ids      []string
	children map[string][]string
	parents  map[string][]string
}

func buildAdjacency(ids []string, edges []canvas.Edge, member map[string]bool) *adjacency {
	a := &adjacency{
		ids:      ids,
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
	for _, e := range edges {
		if !member[e.Source] || !member[e.Target] {
			continue
		}
		a.children[e.Source] = append(a.children[e.Source], e.Target)
		a.parents[e.Target] = append(a.parents[e.Target], e.Source)
	}
	return a
}

// topoOrder returns the nodes in dependency order. On a cycle the
// unresolved remainder is appended sorted by ID, so the pass stays
// deterministic and bounded instead of failing.
func (a *adjacency) topoOrder() []string {
	inDegree := make(map[string]int, len(a.ids))
	for _, id := range a.ids {
		inDegree[id] = len(a.parents[id])
	}
	var queue []string
	for _, id := range a.ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(a.ids))
	placed := make(map[string]bool, len(a.ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		placed[id] = true
		for _, c := range a.children[id] {
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
		sort.Strings(queue)
	}

	if len(order) < len(a.ids) {
		var rest []string
		for _, id := range a.ids {
			if !placed[id] {
				rest = append(rest, id)
			}
		}
		sort.Strings(rest)
		order = append(order, rest...)
	}
	return order
}

// ranks assigns each node its longest-path layer: roots at 0, every other
// node one past its deepest ranked parent.
func (a *adjacency) ranks() map[string]int {
	rank := make(map[string]int, len(a.ids))
	for _, id := range a.topoOrder() {
		r := 0
		for _, p := range a.parents[id] {
			if pr, ok := rank[p]; ok && pr+1 > r {
				r = pr + 1
			}
		}
		rank[id] = r
	}
	return rank
}

// orderLayers groups nodes into layers and orders each layer by the mean
// position of its parents in the previous layer (barycenter), with the
// node ID as the tie-break.
func (a *adjacency) orderLayers(rank map[string]int) [][]string {
	maxRank := 0
	for _, r := range rank {
		if r > maxRank {
			maxRank = r
		}
	}
	layers := make([][]string, maxRank+1)
	for _, id := range a.ids {
		layers[rank[id]] = append(layers[rank[id]], id)
	}
	for _, l := range layers {
		sort.Strings(l)
	}

	prevIndex := make(map[string]int)
	for i, id := range layers[0] {
		prevIndex[id] = i
	}
	for li := 1; li < len(layers); li++ {
		layer := layers[li]
		bary := make(map[string]float64, len(layer))
		for _, id := range layer {
			parents := a.parents[id]
			sum, count := 0.0, 0
			for _, p := range parents {
				if pi, ok := prevIndex[p]; ok {
					sum += float64(pi)
					count++
				}
			}
			if count > 0 {
				bary[id] = sum / float64(count)
			}
		}
		sort.SliceStable(layer, func(i, j int) bool {
			if bary[layer[i]] != bary[layer[j]] {
				return bary[layer[i]] < bary[layer[j]]
			}
			return layer[i] < layer[j]
		})
		prevIndex = make(map[string]int, len(layer))
		for i, id := range layer {
			prevIndex[id] = i
		}
	}
	return layers
}
