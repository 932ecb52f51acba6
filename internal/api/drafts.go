package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/repository"
)

// getDraft returns the persisted draft snapshot. A graph with no stored
// draft gets an empty snapshot: new graphs are expected empty, not 404s.
func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")

	d, err := s.drafts.Get(r.Context(), graphID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusOK, canvas.Snapshot{
			Nodes:    []canvas.Node{},
			Edges:    []canvas.Edge{},
			Viewport: canvas.Viewport{Zoom: 1},
		})
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d.Snapshot)
}

// savedDraft is the whole-replace save body: snapshot plus auxiliary
// editor settings.
type savedDraft struct {
	canvas.Snapshot
	Features     map[string]any       `json:"features"`
	EnvVariables []canvas.EnvVariable `json:"envVariables"`
}

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")

	var body savedDraft
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid draft body: "+err.Error())
		return
	}

	err := s.drafts.Put(r.Context(), &repository.Draft{
		GraphID:      graphID,
		Snapshot:     body.Snapshot,
		Features:     body.Features,
		EnvVariables: body.EnvVariables,
		UpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "success"})
}
