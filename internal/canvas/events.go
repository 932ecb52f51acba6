package canvas

// Run event type constants, matching the execution stream contract.
const (
	EventNodeStart      = "node_start"
	EventNodeFinish     = "node_finish"
	EventWorkflowFinish = "workflow_finish"
	EventError          = "error"
)

// NodeRunEvent is one server-pushed frame of an execution stream. Events
// are consumed exactly once by the stream client and never persisted.
type NodeRunEvent struct {
	Type    string         `json:"type"`
	NodeID  string         `json:"node_id,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// RunStatus is the transient per-node execution state of one run.
type RunStatus string

const (
	StatusIdle    RunStatus = "idle"
	StatusRunning RunStatus = "running"
	StatusSuccess RunStatus = "success"
	StatusFailure RunStatus = "failure"
)

// ProgressEvent is one frame of a progress subscription for long-running
// background tasks (e.g. document indexing). A completed or failed status
// ends the subscription client-side.
type ProgressEvent struct {
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	Error    string  `json:"error,omitempty"`
}
