package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soochol/flowcanvas/internal/canvas"
)

// ErrNoRow is returned when the requested record does not exist.
var ErrNoRow = errors.New("no row")

// DraftRow represents a draft stored in the database.
type DraftRow struct {
	GraphID      string
	Snapshot     canvas.Snapshot
	Features     map[string]any
	EnvVariables []canvas.EnvVariable
	UpdatedAt    time.Time
}

// UpsertDraft replaces the stored draft for a graph.
func (d *DB) UpsertDraft(ctx context.Context, row *DraftRow) error {
	snapJSON, err := json.Marshal(row.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	featJSON, err := json.Marshal(row.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	envJSON, err := json.Marshal(row.EnvVariables)
	if err != nil {
		return fmt.Errorf("marshal env variables: %w", err)
	}

	_, err = d.Pool.ExecContext(ctx,
		`INSERT INTO drafts (graph_id, snapshot, features, env_variables, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (graph_id) DO UPDATE SET snapshot = EXCLUDED.snapshot,
		     features = EXCLUDED.features, env_variables = EXCLUDED.env_variables,
		     updated_at = EXCLUDED.updated_at`,
		row.GraphID, snapJSON, featJSON, envJSON, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

// GetDraft retrieves the draft for a graph.
func (d *DB) GetDraft(ctx context.Context, graphID string) (*DraftRow, error) {
	var (
		row      DraftRow
		snapJSON []byte
		featJSON []byte
		envJSON  []byte
	)
	err := d.Pool.QueryRowContext(ctx,
		`SELECT graph_id, snapshot, features, env_variables, updated_at
		 FROM drafts WHERE graph_id = $1`, graphID,
	).Scan(&row.GraphID, &snapJSON, &featJSON, &envJSON, &row.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: draft %s", ErrNoRow, graphID)
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	if err := json.Unmarshal(snapJSON, &row.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := json.Unmarshal(featJSON, &row.Features); err != nil {
		return nil, fmt.Errorf("unmarshal features: %w", err)
	}
	if err := json.Unmarshal(envJSON, &row.EnvVariables); err != nil {
		return nil, fmt.Errorf("unmarshal env variables: %w", err)
	}
	return &row, nil
}

// DeleteDraft removes the draft for a graph.
func (d *DB) DeleteDraft(ctx context.Context, graphID string) error {
	_, err := d.Pool.ExecContext(ctx, `DELETE FROM drafts WHERE graph_id = $1`, graphID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
