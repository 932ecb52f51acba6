package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/soochol/flowcanvas/internal/canvas"
)

// TaskRegistry holds scripted progress sequences per background task.
type TaskRegistry struct {
	mu      sync.RWMutex
	scripts map[string][]canvas.ProgressEvent
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{scripts: make(map[string][]canvas.ProgressEvent)}
}

// Register installs the progress script replayed for a task.
func (t *TaskRegistry) Register(taskID string, events []canvas.ProgressEvent) {
	t.mu.Lock()
	t.scripts[taskID] = events
	t.mu.Unlock()
}

// Script returns the registered progress sequence for a task.
func (t *TaskRegistry) Script(taskID string) ([]canvas.ProgressEvent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ev, ok := t.scripts[taskID]
	return ev, ok
}

// streamProgress replays a task's progress events over the data framing.
func (s *Server) streamProgress(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	events, ok := s.tasks.Script(taskID)
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("unknown task %s", taskID))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeDetail(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	for _, ev := range events {
		select {
		case <-r.Context().Done():
			return
		default:
		}
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
