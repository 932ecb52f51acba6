package api

import (
	"net/http"
)

const maxUploadSize = 50 << 20 // 50MB

// uploadFile stores a single multipart file for later use as a run input.
func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		writeDetail(w, http.StatusServiceUnavailable, "file storage not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeDetail(w, http.StatusBadRequest, "file too large (max 50MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.storage.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// listFiles returns metadata for all stored uploads.
func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		writeDetail(w, http.StatusServiceUnavailable, "file storage not configured")
		return
	}
	files, err := s.storage.List(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, files)
}
