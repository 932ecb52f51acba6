package canvas

// NodeType tags a node with its executable kind. The set is closed: the
// editor only constructs nodes of these types.
type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeWebhook   NodeType = "webhook_trigger"
	NodeTypeLLM       NodeType = "llm"
	NodeTypeHTTP      NodeType = "http_request"
	NodeTypeCode      NodeType = "code"
	NodeTypeBranch    NodeType = "if_else"
	NodeTypeIteration NodeType = "iteration"
	NodeTypeEnd       NodeType = "end"
	NodeTypeNote      NodeType = "note"
)

// DefaultHandle is the implicit first connector of every multi-output node.
const DefaultHandle = "default"

// EntryOnly reports whether the type can only ever source an edge.
// Start and trigger nodes are never a valid connection target.
func (t NodeType) EntryOnly() bool {
	return t == NodeTypeStart || t == NodeTypeWebhook
}

// TerminalOnly reports whether the type can only ever target an edge.
func (t NodeType) TerminalOnly() bool {
	return t == NodeTypeEnd
}

// Branching reports whether the type declares multiple outgoing handles.
func (t NodeType) Branching() bool {
	return t == NodeTypeBranch
}

// Expandable reports whether the type can inline-render a nested subgraph.
func (t NodeType) Expandable() bool {
	return t == NodeTypeIteration
}

// Container reports whether the type may parent other nodes.
func (t NodeType) Container() bool {
	return t == NodeTypeIteration || t == NodeTypeNote
}

// Annotation reports whether the type is a pure annotation with no
// execution semantics. Annotation nodes keep their position during layout.
func (t NodeType) Annotation() bool {
	return t == NodeTypeNote
}

// Handles returns the node's declared source handles in priority order:
// the implicit default handle first, then branch cases in declaration
// order. Non-branching nodes expose only the default handle.
func (n *Node) Handles() []string {
	handles := []string{DefaultHandle}
	if !n.Type.Branching() {
		return handles
	}
	for _, c := range n.Data.Cases {
		handles = append(handles, c.ID)
	}
	return handles
}
