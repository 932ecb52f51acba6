package graph

import "github.com/soochol/flowcanvas/internal/canvas"

// Run status lives beside the graph, not inside node data: it is scoped
// to one run's lifetime and must never leak into the persisted snapshot.

// SeedIdle resets every node to idle. Called at the start of each run, so
// nodes left running by an abandoned stream are cleaned up implicitly.
func (m *Model) SeedIdle() {
	m.mu.Lock()
	m.status = make(map[string]canvas.RunStatus, len(m.nodes))
	for i := range m.nodes {
		m.status[m.nodes[i].ID] = canvas.StatusIdle
	}
	m.mu.Unlock()
	m.notify()
}

// SetStatus records a node's run status. Unknown IDs are stored as-is;
// the stream may reference nodes added server-side (e.g. expanded
// iteration children) that the canvas does not render individually.
func (m *Model) SetStatus(id string, st canvas.RunStatus) {
	m.mu.Lock()
	m.status[id] = st
	m.mu.Unlock()
	m.notify()
}

// Status returns a node's current run status, defaulting to idle.
func (m *Model) Status(id string) canvas.RunStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.status[id]; ok {
		return st
	}
	return canvas.StatusIdle
}

// Statuses returns a copy of the full status map.
func (m *Model) Statuses() map[string]canvas.RunStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]canvas.RunStatus, len(m.status))
	for k, v := range m.status {
		out[k] = v
	}
	return out
}
