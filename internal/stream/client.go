package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/graph"
)

// Hooks are best-effort presentation side effects requested as events are
// applied; neither is required for correctness.
type Hooks struct {
	// OnActiveNode asks the canvas to re-center/zoom on the node.
	OnActiveNode func(nodeID string)
	// OnNotify surfaces an event to the user.
	OnNotify func(ev canvas.NodeRunEvent)
}

// Result is the outcome of a completed run.
type Result struct {
	Output map[string]any
}

// FatalError is an execution error that makes applying further events
// meaningless. NodeID is empty for run-level failures.
type FatalError struct {
	NodeID  string
	Message string
}

func (e *FatalError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("run failed: %s", e.Message)
	}
	return fmt.Sprintf("node %s failed: %s", e.NodeID, e.Message)
}

// Pump seeds every node idle, then reads the stream body and applies each
// event until the body ends, the context is cancelled, or a fatal event
// arrives. Nodes left running by a cancelled pump are reset by the next
// run's idle seed.
func Pump(ctx context.Context, model *graph.Model, body io.Reader, hooks Hooks) (*Result, error) {
	model.SeedIdle()

	sc := NewScanner(body)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := sc.Next()
		if err == io.EOF {
			return &Result{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}

		res, done, err := apply(model, ev, hooks)
		if err != nil {
			return nil, err
		}
		if done {
			return res, nil
		}
	}
}

// apply advances the per-node status machine for one event:
// idle → running on node_start, running → success on node_finish,
// → failure on an error naming the node. workflow_finish completes the
// run; any error event is fatal (node-scoped errors mark the node failed
// first).
func apply(model *graph.Model, ev canvas.NodeRunEvent, hooks Hooks) (*Result, bool, error) {
	switch ev.Type {
	case canvas.EventNodeStart:
		model.SetStatus(ev.NodeID, canvas.StatusRunning)
		notify(hooks, ev)

	case canvas.EventNodeFinish:
		model.SetStatus(ev.NodeID, canvas.StatusSuccess)
		notify(hooks, ev)

	case canvas.EventWorkflowFinish:
		var output map[string]any
		if o, ok := ev.Payload["output"].(map[string]any); ok {
			output = o
		}
		notify(hooks, ev)
		return &Result{Output: output}, true, nil

	case canvas.EventError:
		msg, _ := ev.Payload["error"].(string)
		if ev.NodeID != "" {
			model.SetStatus(ev.NodeID, canvas.StatusFailure)
		}
		notify(hooks, ev)
		return nil, false, &FatalError{NodeID: ev.NodeID, Message: msg}

	default:
		// Unknown event types are forward-compatible no-ops.
	}
	return nil, false, nil
}

func notify(hooks Hooks, ev canvas.NodeRunEvent) {
	if hooks.OnActiveNode != nil && ev.NodeID != "" {
		hooks.OnActiveNode(ev.NodeID)
	}
	if hooks.OnNotify != nil {
		hooks.OnNotify(ev)
	}
}
