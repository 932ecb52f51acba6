// Package repository defines the persistence contracts for drafts and
// named historical versions, with in-memory and Postgres implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/soochol/flowcanvas/internal/canvas"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Draft is the persisted working copy of a graph: the snapshot plus the
// auxiliary editor settings saved alongside it. A draft is replaced whole
// on every save; there are no partial updates.
type Draft struct {
	GraphID      string               `json:"graphId"`
	Snapshot     canvas.Snapshot      `json:"snapshot"`
	Features     map[string]any       `json:"features,omitempty"`
	EnvVariables []canvas.EnvVariable `json:"envVariables,omitempty"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// Version is a named historical snapshot of a graph. Checkpoint versions
// are created automatically and pruned on a retention schedule; named
// versions are kept until deleted.
type Version struct {
	ID         string          `json:"id"`
	GraphID    string          `json:"graphId"`
	Name       string          `json:"name,omitempty"`
	Snapshot   canvas.Snapshot `json:"snapshot"`
	Checkpoint bool            `json:"checkpoint,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// DraftRepository stores one draft per graph.
type DraftRepository interface {
	Get(ctx context.Context, graphID string) (*Draft, error)
	Put(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, graphID string) error
}

// VersionRepository stores historical versions.
type VersionRepository interface {
	Create(ctx context.Context, v *Version) error
	Get(ctx context.Context, id string) (*Version, error)
	ListByGraph(ctx context.Context, graphID string) ([]*Version, error)
	Delete(ctx context.Context, id string) error
	// DeleteCheckpointsBefore removes auto-checkpoints created before the
	// cutoff and reports how many were pruned.
	DeleteCheckpointsBefore(ctx context.Context, cutoff time.Time) (int, error)
}
