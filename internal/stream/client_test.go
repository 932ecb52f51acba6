package stream

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/graph"
	"github.com/stretchr/testify/require"
)

func runModel(t *testing.T) *graph.Model {
	t.Helper()
	m := graph.New()
	for _, id := range []string{"start", "llmA", "llmB"} {
		typ := canvas.NodeTypeLLM
		if id == "start" {
			typ = canvas.NodeTypeStart
		}
		_, err := m.AddNode(canvas.Node{ID: id, Type: typ})
		require.NoError(t, err)
	}
	return m
}

func TestPump_DrivesStatusesAndHaltsOnError(t *testing.T) {
	body := strings.NewReader(
		"data: {\"type\":\"node_start\",\"node_id\":\"start\"}\n" +
			"data: {\"type\":\"node_finish\",\"node_id\":\"start\"}\n" +
			"data: {\"type\":\"node_start\",\"node_id\":\"llmA\"}\n" +
			"data: {\"type\":\"node_finish\",\"node_id\":\"llmA\"}\n" +
			"data: {\"type\":\"node_start\",\"node_id\":\"llmB\"}\n" +
			"data: {\"type\":\"error\",\"node_id\":\"llmB\",\"payload\":{\"error\":\"timeout\"}}\n" +
			// Anything after a fatal event must never be applied.
			"data: {\"type\":\"node_finish\",\"node_id\":\"llmB\"}\n",
	)
	m := runModel(t)

	_, err := Pump(context.Background(), m, body, Hooks{})
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, "llmB", fatal.NodeID)
	require.Equal(t, "timeout", fatal.Message)

	require.Equal(t, canvas.StatusSuccess, m.Status("start"))
	require.Equal(t, canvas.StatusSuccess, m.Status("llmA"))
	require.Equal(t, canvas.StatusFailure, m.Status("llmB"))
}

func TestPump_WorkflowFinishReturnsOutput(t *testing.T) {
	body := strings.NewReader(
		"data: {\"type\":\"node_start\",\"node_id\":\"llmA\"}\n" +
			"data: {\"type\":\"node_finish\",\"node_id\":\"llmA\"}\n" +
			"data: {\"type\":\"workflow_finish\",\"payload\":{\"output\":{\"answer\":\"42\"}}}\n",
	)
	m := runModel(t)

	res, err := Pump(context.Background(), m, body, Hooks{})
	require.NoError(t, err)
	require.Equal(t, "42", res.Output["answer"])
	require.Equal(t, canvas.StatusSuccess, m.Status("llmA"))
}

func TestPump_SeedsEveryNodeIdle(t *testing.T) {
	m := runModel(t)
	m.SetStatus("llmA", canvas.StatusFailure)

	// An empty body is a run that produced no events; the seed still ran.
	res, err := Pump(context.Background(), m, strings.NewReader(""), Hooks{})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, canvas.StatusIdle, m.Status("llmA"))
}

func TestPump_RunLevelErrorHasNoNodeID(t *testing.T) {
	body := strings.NewReader("data: {\"type\":\"error\",\"payload\":{\"error\":\"quota exceeded\"}}\n")
	m := runModel(t)

	_, err := Pump(context.Background(), m, body, Hooks{})
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	require.Empty(t, fatal.NodeID)
	require.Contains(t, fatal.Error(), "run failed: quota exceeded")
	// No node carries a failure from a run-level error.
	for _, id := range []string{"start", "llmA", "llmB"} {
		require.Equal(t, canvas.StatusIdle, m.Status(id))
	}
}

func TestPump_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := runModel(t)
	_, err := Pump(ctx, m, strings.NewReader("data: {\"type\":\"node_start\",\"node_id\":\"llmA\"}\n"), Hooks{})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestPump_InvokesHooks(t *testing.T) {
	body := strings.NewReader(
		"data: {\"type\":\"node_start\",\"node_id\":\"llmA\"}\n" +
			"data: {\"type\":\"workflow_finish\"}\n",
	)
	m := runModel(t)

	var active []string
	var notified []canvas.NodeRunEvent
	hooks := Hooks{
		OnActiveNode: func(id string) { active = append(active, id) },
		OnNotify:     func(ev canvas.NodeRunEvent) { notified = append(notified, ev) },
	}
	_, err := Pump(context.Background(), m, body, hooks)
	require.NoError(t, err)

	require.Equal(t, []string{"llmA"}, active)
	require.Len(t, notified, 2)
	require.Equal(t, canvas.EventWorkflowFinish, notified[1].Type)
}

func TestPump_IgnoresUnknownEventTypes(t *testing.T) {
	body := strings.NewReader(
		"data: {\"type\":\"telemetry\",\"node_id\":\"llmA\"}\n" +
			"data: {\"type\":\"workflow_finish\"}\n",
	)
	m := runModel(t)

	_, err := Pump(context.Background(), m, body, Hooks{})
	require.NoError(t, err)
	require.Equal(t, canvas.StatusIdle, m.Status("llmA"))
}
