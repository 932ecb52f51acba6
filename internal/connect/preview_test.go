package connect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soochol/flowcanvas/internal/canvas"
)

func branchNode(id string, cases ...string) canvas.Node {
	n := canvas.Node{ID: id, Type: canvas.NodeTypeBranch, Width: 200, Height: 100}
	for _, c := range cases {
		n.Data.Cases = append(n.Data.Cases, canvas.BranchCase{ID: c})
	}
	return n
}

func TestTrack_IgnoresForeignPayloads(t *testing.T) {
	nodes := []canvas.Node{{ID: "a", Type: canvas.NodeTypeLLM}}
	st := Track("text/plain", canvas.Position{X: 10, Y: 10}, nodes, nil, Options{})
	require.Equal(t, State{}, st)
}

func TestTrack_NothingWithinRadius(t *testing.T) {
	nodes := []canvas.Node{{ID: "a", Type: canvas.NodeTypeLLM, Position: canvas.Position{X: 5000, Y: 5000}}}
	st := Track(PayloadNode, canvas.Position{X: 0, Y: 0}, nodes, nil, Options{})
	require.Empty(t, st.NearestID)
	require.Nil(t, st.Position)
}

func TestTrack_SideAndProposedPosition(t *testing.T) {
	nodes := []canvas.Node{
		{ID: "a", Type: canvas.NodeTypeLLM, Position: canvas.Position{X: 0, Y: 0}, Width: 200, Height: 100},
	}

	// Pointer right of the footprint center proposes to the right.
	st := Track(PayloadNode, canvas.Position{X: 300, Y: 50}, nodes, nil, Options{})
	require.Equal(t, "a", st.NearestID)
	require.Equal(t, SideRight, st.Side)
	require.NotNil(t, st.Position)
	require.Equal(t, 200.0+DefaultGap, st.Position.X)
	require.Equal(t, 0.0, st.Position.Y)

	// Pointer left of center proposes to the left.
	st = Track(PayloadNode, canvas.Position{X: -100, Y: 50}, nodes, nil, Options{})
	require.Equal(t, SideLeft, st.Side)
	require.Equal(t, -(200.0 + DefaultGap), st.Position.X)
}

func TestTrack_EntryOnlyNeverTargets(t *testing.T) {
	nodes := []canvas.Node{
		{ID: "start", Type: canvas.NodeTypeStart, Position: canvas.Position{X: 0, Y: 0}, Width: 200, Height: 100},
	}
	// Left of a start node would make it a target: no preview.
	st := Track(PayloadNode, canvas.Position{X: -50, Y: 50}, nodes, nil, Options{})
	require.Equal(t, State{}, st)

	// Right side is fine.
	st = Track(PayloadNode, canvas.Position{X: 250, Y: 50}, nodes, nil, Options{})
	require.Equal(t, "start", st.NearestID)
}

func TestTrack_TerminalOnlyNeverSources(t *testing.T) {
	nodes := []canvas.Node{
		{ID: "end", Type: canvas.NodeTypeEnd, Position: canvas.Position{X: 0, Y: 0}, Width: 200, Height: 100},
	}
	st := Track(PayloadNode, canvas.Position{X: 250, Y: 50}, nodes, nil, Options{})
	require.Equal(t, State{}, st)

	st = Track(PayloadNode, canvas.Position{X: -50, Y: 50}, nodes, nil, Options{})
	require.Equal(t, "end", st.NearestID)
}

func TestTrack_PriorityHandleSelection(t *testing.T) {
	n := branchNode("br", "case1", "case2")
	edges := []canvas.Edge{
		{ID: "e1", Source: "br", Target: "x", SourceHandle: canvas.DefaultHandle},
		{ID: "e2", Source: "br", Target: "y", SourceHandle: "case1"},
	}

	st := Track(PayloadNode, canvas.Position{X: 300, Y: 50}, []canvas.Node{n}, edges, Options{})
	require.Equal(t, SideRight, st.Side)
	require.Equal(t, "case2", st.Handle)
	require.False(t, st.NewCase)
}

func TestTrack_AllHandlesOccupiedReportsNewCase(t *testing.T) {
	n := branchNode("br", "case1", "case2")
	edges := []canvas.Edge{
		{ID: "e1", Source: "br", Target: "x", SourceHandle: canvas.DefaultHandle},
		{ID: "e2", Source: "br", Target: "y", SourceHandle: "case1"},
		{ID: "e3", Source: "br", Target: "z", SourceHandle: "case2"},
	}

	st := Track(PayloadNode, canvas.Position{X: 300, Y: 50}, []canvas.Node{n}, edges, Options{})
	require.Equal(t, canvas.NewCaseHandle, st.Handle)
	require.True(t, st.NewCase)
}

func TestTrack_NoHandleOnLeftSide(t *testing.T) {
	n := branchNode("br", "case1")
	st := Track(PayloadNode, canvas.Position{X: -50, Y: 50}, []canvas.Node{n}, nil, Options{})
	require.Equal(t, "br", st.NearestID)
	require.Equal(t, SideLeft, st.Side)
	require.Empty(t, st.Handle)
}

func TestTrack_PicksNearestOfSeveral(t *testing.T) {
	nodes := []canvas.Node{
		{ID: "far", Type: canvas.NodeTypeLLM, Position: canvas.Position{X: 400, Y: 0}, Width: 200, Height: 100},
		{ID: "near", Type: canvas.NodeTypeLLM, Position: canvas.Position{X: 0, Y: 0}, Width: 200, Height: 100},
	}
	st := Track(PayloadNode, canvas.Position{X: 120, Y: 50}, nodes, nil, Options{})
	require.Equal(t, "near", st.NearestID)
}

func TestToGraph(t *testing.T) {
	v := canvas.Viewport{X: 100, Y: 50, Zoom: 2}
	p := ToGraph(v, canvas.Position{X: 300, Y: 250})
	require.Equal(t, canvas.Position{X: 100, Y: 100}, p)

	// Zero zoom is treated as 1 rather than dividing by zero.
	p = ToGraph(canvas.Viewport{}, canvas.Position{X: 7, Y: 9})
	require.Equal(t, canvas.Position{X: 7, Y: 9}, p)
}
