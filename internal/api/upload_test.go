package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soochol/flowcanvas/internal/repository"
	"github.com/soochol/flowcanvas/internal/storage"
)

func uploadBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestUploadAndList(t *testing.T) {
	s := NewServer(repository.NewMemoryDrafts())
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	s.SetStorage(store)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body, ct := uploadBody(t, "file", "input.csv", "a,b\n1,2\n")
	resp, err := http.Post(ts.URL+"/api/upload", ct, body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var info storage.FileInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.ID == "" || info.Filename != "input.csv" {
		t.Fatalf("unexpected info: %+v", info)
	}

	listResp, err := http.Get(ts.URL + "/api/files")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer listResp.Body.Close()
	var files []storage.FileInfo
	if err := json.NewDecoder(listResp.Body).Decode(&files); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(files) != 1 || files[0].ID != info.ID {
		t.Fatalf("unexpected listing: %+v", files)
	}
}

func TestUpload_NoStorageConfigured(t *testing.T) {
	s := NewServer(repository.NewMemoryDrafts())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body, ct := uploadBody(t, "file", "x.txt", "x")
	resp, err := http.Post(ts.URL+"/api/upload", ct, body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	s := NewServer(repository.NewMemoryDrafts())
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	s.SetStorage(store)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body, ct := uploadBody(t, "wrong", "x.txt", "x")
	resp, err := http.Post(ts.URL+"/api/upload", ct, body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
