// Package canvas defines the persisted data model of the workflow editor:
// nodes, edges, viewport, and the snapshot unit used for drafts and
// historical versions.
package canvas

// Position holds x/y coordinates on the editor canvas. A parented node's
// position is relative to its parent's frame.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single executable (or annotation) step on the canvas.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	ParentID string   `json:"parentId,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData holds per-node configuration plus the structured fields some
// node types carry (branch cases, nested subgraphs). Transient run status
// is deliberately not part of NodeData; it lives in the graph model's
// status map and is never persisted.
type NodeData struct {
	Title    string         `json:"title,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
	Cases    []BranchCase   `json:"cases,omitempty"`
	Subgraph *Subgraph      `json:"subgraph,omitempty"`
}

// BranchCase is a declared outgoing branch of an if_else node. Condition
// is an expr-lang expression evaluated by the backend against run state.
type BranchCase struct {
	ID        string `json:"id"`
	Condition string `json:"condition,omitempty"`
}

// Subgraph is the nested graph inlined by an expandable node. EntryID
// names the node traversal starts from when sizing the parent.
type Subgraph struct {
	EntryID string `json:"entryId"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

// Edge is a directed connection between two nodes. SourceHandle
// discriminates among a multi-output node's connectors; at most one edge
// may originate from a given (source, sourceHandle) pair.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Viewport is the persisted pan/zoom state of the canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Snapshot is the unit of persistence and versioning. Drafts and named
// historical versions are both Snapshots; distinct Snapshots are never
// mutated in place.
type Snapshot struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// EnvVariable is an editor-scoped environment variable persisted alongside
// the draft.
type EnvVariable struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Secret bool   `json:"secret,omitempty"`
}
