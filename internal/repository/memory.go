package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	memstore "github.com/soochol/flowcanvas/internal/repository/memory"
)

// MemoryDrafts is a thread-safe in-memory DraftRepository.
type MemoryDrafts struct {
	store *memstore.Store[*Draft]
}

// NewMemoryDrafts creates an empty in-memory draft repository.
func NewMemoryDrafts() *MemoryDrafts {
	return &MemoryDrafts{store: memstore.New[*Draft]()}
}

func (r *MemoryDrafts) Get(ctx context.Context, graphID string) (*Draft, error) {
	d, err := r.store.Get(ctx, graphID)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: draft %s", ErrNotFound, graphID)
	}
	return d, err
}

func (r *MemoryDrafts) Put(ctx context.Context, d *Draft) error {
	return r.store.Set(ctx, d.GraphID, d)
}

func (r *MemoryDrafts) Delete(ctx context.Context, graphID string) error {
	// Draft delete is a no-op on missing keys.
	_ = r.store.Delete(ctx, graphID)
	return nil
}

// MemoryVersions is a thread-safe in-memory VersionRepository.
type MemoryVersions struct {
	store *memstore.Store[*Version]
}

// NewMemoryVersions creates an empty in-memory version repository.
func NewMemoryVersions() *MemoryVersions {
	return &MemoryVersions{store: memstore.New[*Version]()}
}

func (r *MemoryVersions) Create(ctx context.Context, v *Version) error {
	return r.store.Set(ctx, v.ID, v)
}

func (r *MemoryVersions) Get(ctx context.Context, id string) (*Version, error) {
	v, err := r.store.Get(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: version %s", ErrNotFound, id)
	}
	return v, err
}

func (r *MemoryVersions) ListByGraph(ctx context.Context, graphID string) ([]*Version, error) {
	out, err := r.store.Filter(ctx, func(v *Version) bool { return v.GraphID == graphID })
	if err != nil {
		return nil, err
	}
	// Newest first, ID tie-break for stable listings.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryVersions) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); errors.Is(err, memstore.ErrNotFound) {
		return fmt.Errorf("%w: version %s", ErrNotFound, id)
	}
	return nil
}

func (r *MemoryVersions) DeleteCheckpointsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return r.store.DeleteWhere(ctx, func(v *Version) bool {
		return v.Checkpoint && v.CreatedAt.Before(cutoff)
	})
}
