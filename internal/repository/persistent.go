package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/soochol/flowcanvas/internal/db"
)

// PersistentDrafts wraps MemoryDrafts with a PostgreSQL backend.
// Writes go to both stores (DB failure is logged but non-fatal).
// Reads try memory first, falling back to the database.
type PersistentDrafts struct {
	mem *MemoryDrafts
	db  *db.DB
}

// NewPersistentDrafts creates a draft repository backed by both memory
// and PostgreSQL.
func NewPersistentDrafts(mem *MemoryDrafts, database *db.DB) *PersistentDrafts {
	return &PersistentDrafts{mem: mem, db: database}
}

func (r *PersistentDrafts) Get(ctx context.Context, graphID string) (*Draft, error) {
	d, err := r.mem.Get(ctx, graphID)
	if err == nil {
		return d, nil
	}

	row, dbErr := r.db.GetDraft(ctx, graphID)
	if dbErr != nil {
		return nil, err // return original ErrNotFound
	}

	d = &Draft{
		GraphID:      row.GraphID,
		Snapshot:     row.Snapshot,
		Features:     row.Features,
		EnvVariables: row.EnvVariables,
		UpdatedAt:    row.UpdatedAt,
	}
	_ = r.mem.Put(ctx, d)
	return d, nil
}

func (r *PersistentDrafts) Put(ctx context.Context, d *Draft) error {
	_ = r.mem.Put(ctx, d)
	err := r.db.UpsertDraft(ctx, &db.DraftRow{
		GraphID:      d.GraphID,
		Snapshot:     d.Snapshot,
		Features:     d.Features,
		EnvVariables: d.EnvVariables,
		UpdatedAt:    d.UpdatedAt,
	})
	if err != nil {
		slog.Warn("db upsert draft failed, in-memory only", "graph", d.GraphID, "err", err)
	}
	return nil
}

func (r *PersistentDrafts) Delete(ctx context.Context, graphID string) error {
	_ = r.mem.Delete(ctx, graphID)
	if err := r.db.DeleteDraft(ctx, graphID); err != nil {
		slog.Warn("db delete draft failed", "graph", graphID, "err", err)
	}
	return nil
}

// PersistentVersions wraps MemoryVersions with a PostgreSQL backend using
// the same dual-write, read-through policy as PersistentDrafts.
type PersistentVersions struct {
	mem *MemoryVersions
	db  *db.DB
}

// NewPersistentVersions creates a version repository backed by both
// memory and PostgreSQL.
func NewPersistentVersions(mem *MemoryVersions, database *db.DB) *PersistentVersions {
	return &PersistentVersions{mem: mem, db: database}
}

func (r *PersistentVersions) Create(ctx context.Context, v *Version) error {
	_ = r.mem.Create(ctx, v)
	err := r.db.InsertVersion(ctx, &db.VersionRow{
		ID:         v.ID,
		GraphID:    v.GraphID,
		Name:       v.Name,
		Snapshot:   v.Snapshot,
		Checkpoint: v.Checkpoint,
		CreatedAt:  v.CreatedAt,
	})
	if err != nil {
		slog.Warn("db insert version failed, in-memory only", "version", v.ID, "err", err)
	}
	return nil
}

func (r *PersistentVersions) Get(ctx context.Context, id string) (*Version, error) {
	v, err := r.mem.Get(ctx, id)
	if err == nil {
		return v, nil
	}

	row, dbErr := r.db.GetVersion(ctx, id)
	if dbErr != nil {
		return nil, err
	}
	v = versionFromRow(row)
	_ = r.mem.Create(ctx, v)
	return v, nil
}

func (r *PersistentVersions) ListByGraph(ctx context.Context, graphID string) ([]*Version, error) {
	rows, err := r.db.ListVersions(ctx, graphID)
	if err == nil {
		out := make([]*Version, len(rows))
		for i := range rows {
			out[i] = versionFromRow(&rows[i])
		}
		return out, nil
	}
	slog.Warn("db list versions failed, falling back to in-memory", "graph", graphID, "err", err)
	return r.mem.ListByGraph(ctx, graphID)
}

func (r *PersistentVersions) Delete(ctx context.Context, id string) error {
	_ = r.mem.Delete(ctx, id)
	if err := r.db.DeleteVersion(ctx, id); err != nil {
		slog.Warn("db delete version failed", "version", id, "err", err)
	}
	return nil
}

func (r *PersistentVersions) DeleteCheckpointsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	_, _ = r.mem.DeleteCheckpointsBefore(ctx, cutoff)
	return r.db.DeleteCheckpointsBefore(ctx, cutoff)
}

func versionFromRow(row *db.VersionRow) *Version {
	return &Version{
		ID:         row.ID,
		GraphID:    row.GraphID,
		Name:       row.Name,
		Snapshot:   row.Snapshot,
		Checkpoint: row.Checkpoint,
		CreatedAt:  row.CreatedAt,
	}
}
