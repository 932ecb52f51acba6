package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/soochol/flowcanvas/internal/canvas"
	"github.com/soochol/flowcanvas/internal/stream"
)

// SubscribeProgress streams progress events for a long-running background
// task (e.g. document indexing) into fn. Listening ends when the task
// reports completed or failed, or when the context is cancelled. A failed
// status is returned as an error carrying the task's message.
func (c *Client) SubscribeProgress(ctx context.Context, taskID string, fn func(canvas.ProgressEvent)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/tasks/"+taskID+"/progress"), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("subscribe progress: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	sc := stream.NewScanner(resp.Body)
	for {
		raw, err := sc.NextFrame()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read progress stream: %w", err)
		}

		var ev canvas.ProgressEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			slog.Warn("progress: dropping malformed frame", "task", taskID, "err", err)
			continue
		}
		if fn != nil {
			fn(ev)
		}

		switch ev.Status {
		case "completed":
			return nil
		case "failed":
			return fmt.Errorf("task %s failed: %s", taskID, ev.Error)
		}
	}
}
