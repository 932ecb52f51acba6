package canvas

// NewCaseHandle is the placeholder reported when every declared handle of
// a branching node already has an outgoing edge. Dropping a connection on
// it means "append a new case, then connect through it".
const NewCaseHandle = "__new_case__"

// PriorityHandle picks the source handle a new outgoing connection from n
// should use: the default handle first, then declared branch cases in
// order, first handle with no existing outgoing edge wins. When all
// handles are occupied it returns (NewCaseHandle, false).
//
// The drag preview and the actual connect path both resolve handles
// through this function so the proposed drop and the committed edge can
// never disagree.
func PriorityHandle(n *Node, edges []Edge) (handle string, free bool) {
	occupied := make(map[string]bool)
	for _, e := range edges {
		if e.Source != n.ID {
			continue
		}
		h := e.SourceHandle
		if h == "" {
			h = DefaultHandle
		}
		occupied[h] = true
	}
	for _, h := range n.Handles() {
		if !occupied[h] {
			return h, true
		}
	}
	return NewCaseHandle, false
}
