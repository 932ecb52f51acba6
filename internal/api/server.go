// Package api is the local development server backing the editor: draft
// persistence, version history, recorded-run streaming, progress replay,
// and run-input uploads. It speaks the same wire contract as the
// production backend so the editor runtime and its tests run against it
// unchanged.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/soochol/flowcanvas/internal/repository"
	"github.com/soochol/flowcanvas/internal/storage"
	"github.com/soochol/flowcanvas/internal/version"
)

type Server struct {
	drafts     repository.DraftRepository
	versionSvc *version.Service
	runs       *RunRegistry
	tasks      *TaskRegistry
	storage    storage.Storage
}

// NewServer creates a Server over the given draft repository.
func NewServer(drafts repository.DraftRepository) *Server {
	return &Server{
		drafts: drafts,
		runs:   NewRunRegistry(),
		tasks:  NewTaskRegistry(),
	}
}

// SetVersionService configures version history endpoints.
func (s *Server) SetVersionService(svc *version.Service) {
	s.versionSvc = svc
}

// SetStorage configures the file storage backend for uploads.
func (s *Server) SetStorage(store storage.Storage) {
	s.storage = store
}

// Runs exposes the recorded-run registry for scripting executions.
func (s *Server) Runs() *RunRegistry { return s.runs }

// Tasks exposes the progress-script registry.
func (s *Server) Tasks() *TaskRegistry { return s.tasks }

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		r.Route("/drafts", func(r chi.Router) {
			r.Get("/{graphID}", s.getDraft)
			r.Post("/{graphID}", s.saveDraft)
			r.Get("/{graphID}/versions", s.listVersions)
			r.Post("/{graphID}/versions", s.createVersion)
		})
		r.Post("/versions/{id}/restore", s.restoreVersion)
		r.Delete("/versions/{id}", s.deleteVersion)
		r.Post("/workflows/{graphID}/stream", s.streamRun)
		r.Get("/tasks/{id}/progress", s.streamProgress)
		r.Post("/upload", s.uploadFile)
		r.Get("/files", s.listFiles)
	})
	return r
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDetail writes the {detail} error body the client contract expects.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
