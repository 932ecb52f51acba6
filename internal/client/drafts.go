package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/draft"
)

// draftPayload is the wire shape of a saved draft: the snapshot fields
// plus the auxiliary editor settings, replaced whole on every save.
type draftPayload struct {
	canvas.Snapshot
	Features     map[string]any       `json:"features,omitempty"`
	EnvVariables []canvas.EnvVariable `json:"envVariables,omitempty"`
}

// GetDraft fetches the persisted draft snapshot for a graph.
func (c *Client) GetDraft(ctx context.Context, graphID string) (canvas.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/drafts/"+graphID), nil)
	if err != nil {
		return canvas.Snapshot{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return canvas.Snapshot{}, fmt.Errorf("fetch draft: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return canvas.Snapshot{}, decodeError(resp)
	}

	var snap canvas.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return canvas.Snapshot{}, fmt.Errorf("decode draft: %w", err)
	}
	return snap, nil
}

// SaveDraft replaces the persisted draft with the given snapshot and
// auxiliary settings.
func (c *Client) SaveDraft(ctx context.Context, graphID string, snap canvas.Snapshot, aux draft.Settings) error {
	body, err := json.Marshal(draftPayload{
		Snapshot:     snap,
		Features:     aux.Features,
		EnvVariables: aux.EnvVariables,
	})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/drafts/"+graphID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return decodeError(resp)
	}
	return nil
}

// draftStore adapts the client to the draft.Store interface.
type draftStore struct{ c *Client }

func (s draftStore) Load(ctx context.Context, graphID string) (canvas.Snapshot, error) {
	return s.c.GetDraft(ctx, graphID)
}

func (s draftStore) Save(ctx context.Context, graphID string, snap canvas.Snapshot, aux draft.Settings) error {
	return s.c.SaveDraft(ctx, graphID, snap, aux)
}

// DraftStore exposes the draft endpoints as a draft.Store.
func (c *Client) DraftStore() draft.Store {
	return draftStore{c: c}
}
