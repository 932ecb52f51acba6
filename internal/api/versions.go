package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/soochol/flowcanvas/internal/repository"
)

func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	if s.versionSvc == nil {
		writeDetail(w, http.StatusServiceUnavailable, "version history not configured")
		return
	}
	graphID := chi.URLParam(r, "graphID")

	versions, err := s.versionSvc.List(r.Context(), graphID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if versions == nil {
		versions = []*repository.Version{}
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) createVersion(w http.ResponseWriter, r *http.Request) {
	if s.versionSvc == nil {
		writeDetail(w, http.StatusServiceUnavailable, "version history not configured")
		return
	}
	graphID := chi.URLParam(r, "graphID")

	var body struct {
		Name string `json:"name"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	v, err := s.versionSvc.Publish(r.Context(), graphID, body.Name)
	if errors.Is(err, repository.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// restoreVersion replaces the draft with the version's snapshot.
func (s *Server) restoreVersion(w http.ResponseWriter, r *http.Request) {
	if s.versionSvc == nil {
		writeDetail(w, http.StatusServiceUnavailable, "version history not configured")
		return
	}
	id := chi.URLParam(r, "id")

	d, err := s.versionSvc.Restore(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d.Snapshot)
}

func (s *Server) deleteVersion(w http.ResponseWriter, r *http.Request) {
	if s.versionSvc == nil {
		writeDetail(w, http.StatusServiceUnavailable, "version history not configured")
		return
	}
	id := chi.URLParam(r, "id")

	if err := s.versionSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, err.Error())
			return
		}
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "success"})
}
