package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/soochol/flowcanvas/internal/canvas"
)

// RunRegistry holds scripted event sequences per graph. The devserver
// does not execute workflows; it replays a registered script over the
// same chunked wire framing the production engine uses, which is all the
// editor runtime can observe anyway.
type RunRegistry struct {
	mu      sync.RWMutex
	scripts map[string][]canvas.NodeRunEvent
}

// NewRunRegistry creates an empty registry.
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{scripts: make(map[string][]canvas.NodeRunEvent)}
}

// Register installs the event script replayed for a graph's runs.
func (r *RunRegistry) Register(graphID string, events []canvas.NodeRunEvent) {
	r.mu.Lock()
	r.scripts[graphID] = events
	r.mu.Unlock()
}

// Script returns the registered event sequence for a graph.
func (r *RunRegistry) Script(graphID string) ([]canvas.NodeRunEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.scripts[graphID]
	return ev, ok
}

// streamRun accepts a JSON or multipart run request and streams the
// graph's recorded events as newline-delimited "data: " frames. Failures
// before the first frame are hard errors with a {detail} body; after
// streaming begins the body simply ends.
func (s *Server) streamRun(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")

	if _, err := s.parseRunInputs(r); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	events, ok := s.runs.Script(graphID)
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("no run recorded for graph %s", graphID))
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
		writeEventFrame(w, ev)
		flusher.Flush()
	}
}

// writeEventFrame writes a single "data: " frame followed by a blank
// separator line.
func writeEventFrame(w http.ResponseWriter, ev canvas.NodeRunEvent) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// parseRunInputs decodes the run request body. JSON bodies carry inputs
// directly; multipart bodies carry an "inputs" field plus uploaded files,
// stored through the storage backend when one is configured.
func (s *Server) parseRunInputs(r *http.Request) (map[string]any, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || ct == "application/json" {
		var body struct {
			Inputs map[string]any `json:"inputs"`
		}
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				return nil, fmt.Errorf("invalid run body: %w", err)
			}
		}
		return body.Inputs, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}
	inputs := make(map[string]any)
	if raw := r.FormValue("inputs"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
			return nil, fmt.Errorf("invalid inputs field: %w", err)
		}
	}
	if s.storage != nil && r.MultipartForm != nil {
		for _, hdr := range r.MultipartForm.File["files"] {
			f, err := hdr.Open()
			if err != nil {
				return nil, fmt.Errorf("open upload %s: %w", hdr.Filename, err)
			}
			info, err := s.storage.Save(r.Context(), hdr.Filename, hdr.Header.Get("Content-Type"), f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("store upload %s: %w", hdr.Filename, err)
			}
			inputs["file:"+hdr.Filename] = info.ID
		}
	}
	return inputs, nil
}
