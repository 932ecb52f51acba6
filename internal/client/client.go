// Package client is the typed HTTP glue between the editor runtime and
// the backend: draft persistence, run streaming, and progress
// subscriptions. It carries no editor logic of its own.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL. A nil http.Client falls
// back to http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// APIError is a non-2xx response. Detail comes from the server's
// {"detail": ...} error body when present.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// decodeError turns a failed response into an APIError, consuming the
// body.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
			apiErr.Detail = detail.Detail
		}
	}
	return apiErr
}
