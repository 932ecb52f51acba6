package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Upload is a file attached to a run request.
type Upload struct {
	Name    string
	Content io.Reader
}

// OpenRunStream starts a workflow run and returns the raw chunked event
// body. JSON is used for plain inputs; attaching files switches the
// request to multipart. The caller owns the returned body and must close
// it — abandoning it mid-stream is how a run is detached from the editor.
// A non-2xx status before streaming begins is a hard failure.
func (c *Client) OpenRunStream(ctx context.Context, graphID string, inputs map[string]any, files []Upload) (io.ReadCloser, error) {
	var (
		body        io.Reader
		contentType string
		err         error
	)
	if len(files) == 0 {
		var raw []byte
		raw, err = json.Marshal(map[string]any{"inputs": inputs})
		body = bytes.NewReader(raw)
		contentType = "application/json"
	} else {
		body, contentType, err = multipartRunBody(inputs, files)
	}
	if err != nil {
		return nil, fmt.Errorf("encode run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/workflows/"+graphID+"/stream"), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

// multipartRunBody encodes inputs as a JSON form field plus one part per
// uploaded file.
func multipartRunBody(inputs map[string]any, files []Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	raw, err := json.Marshal(inputs)
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("inputs", string(raw)); err != nil {
		return nil, "", err
	}
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy upload %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
