package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/soochol/flowcanvas/internal/canvas"
)

// VersionRow represents a historical version stored in the database.
type VersionRow struct {
	ID         string
	GraphID    string
	Name       string
	Snapshot   canvas.Snapshot
	Checkpoint bool
	CreatedAt  time.Time
}

// InsertVersion stores a new version.
func (d *DB) InsertVersion(ctx context.Context, row *VersionRow) error {
	snapJSON, err := json.Marshal(row.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = d.Pool.ExecContext(ctx,
		`INSERT INTO versions (id, graph_id, name, snapshot, checkpoint, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		row.ID, row.GraphID, row.Name, snapJSON, row.Checkpoint, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

// GetVersion retrieves a version by ID.
func (d *DB) GetVersion(ctx context.Context, id string) (*VersionRow, error) {
	var (
		row      VersionRow
		snapJSON []byte
	)
	err := d.Pool.QueryRowContext(ctx,
		`SELECT id, graph_id, name, snapshot, checkpoint, created_at
		 FROM versions WHERE id = $1`, id,
	).Scan(&row.ID, &row.GraphID, &row.Name, &snapJSON, &row.Checkpoint, &row.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: version %s", ErrNoRow, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	if err := json.Unmarshal(snapJSON, &row.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &row, nil
}

// ListVersions retrieves all versions of a graph, newest first.
func (d *DB) ListVersions(ctx context.Context, graphID string) ([]VersionRow, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT id, graph_id, name, snapshot, checkpoint, created_at
		 FROM versions WHERE graph_id = $1 ORDER BY created_at DESC, id`, graphID,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []VersionRow
	for rows.Next() {
		var (
			row      VersionRow
			snapJSON []byte
		)
		if err := rows.Scan(&row.ID, &row.GraphID, &row.Name, &snapJSON, &row.Checkpoint, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		if err := json.Unmarshal(snapJSON, &row.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteVersion removes a version by ID.
func (d *DB) DeleteVersion(ctx context.Context, id string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: version %s", ErrNoRow, id)
	}
	return nil
}

// DeleteCheckpointsBefore prunes auto-checkpoints older than the cutoff.
func (d *DB) DeleteCheckpointsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := d.Pool.ExecContext(ctx,
		`DELETE FROM versions WHERE checkpoint AND created_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("prune checkpoints: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
