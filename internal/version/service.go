// Package version manages named historical versions of a graph. A version
// is an immutable snapshot; restoring one wholesale-replaces the draft.
// Auto-checkpoints are pruned on a cron schedule.
package version

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/soochol/flowcanvas/internal/repository"
)

// DefaultRetention is how long auto-checkpoints are kept before the
// retention sweep prunes them.
const DefaultRetention = 7 * 24 * time.Hour

// retentionSpec runs the sweep hourly.
const retentionSpec = "0 0 * * * *"

// Service creates, restores, and prunes graph versions.
type Service struct {
	versions  repository.VersionRepository
	drafts    repository.DraftRepository
	retention time.Duration
	cron      *cron.Cron
}

// NewService creates a Service. A zero retention takes the default.
func NewService(versions repository.VersionRepository, drafts repository.DraftRepository, retention time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{
		versions:  versions,
		drafts:    drafts,
		retention: retention,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Publish snapshots the current draft under a name. Named versions are
// never pruned automatically.
func (s *Service) Publish(ctx context.Context, graphID, name string) (*repository.Version, error) {
	return s.create(ctx, graphID, name, false)
}

// Checkpoint snapshots the current draft as an auto-checkpoint subject to
// retention pruning.
func (s *Service) Checkpoint(ctx context.Context, graphID string) (*repository.Version, error) {
	return s.create(ctx, graphID, "", true)
}

func (s *Service) create(ctx context.Context, graphID, name string, checkpoint bool) (*repository.Version, error) {
	d, err := s.drafts.Get(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", graphID, err)
	}
	v := &repository.Version{
		ID:         uuid.NewString(),
		GraphID:    graphID,
		Name:       name,
		Snapshot:   d.Snapshot,
		Checkpoint: checkpoint,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.versions.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("store version: %w", err)
	}
	return v, nil
}

// List returns all versions of a graph, newest first.
func (s *Service) List(ctx context.Context, graphID string) ([]*repository.Version, error) {
	return s.versions.ListByGraph(ctx, graphID)
}

// Delete removes a version by ID.
func (s *Service) Delete(ctx context.Context, versionID string) error {
	return s.versions.Delete(ctx, versionID)
}

// Restore replaces the graph's draft with the version's snapshot and
// returns the new draft. The version itself is never mutated.
func (s *Service) Restore(ctx context.Context, versionID string) (*repository.Draft, error) {
	v, err := s.versions.Get(ctx, versionID)
	if err != nil {
		return nil, err
	}

	d, err := s.drafts.Get(ctx, v.GraphID)
	if err != nil {
		d = &repository.Draft{GraphID: v.GraphID}
	}
	d.Snapshot = v.Snapshot
	d.UpdatedAt = time.Now().UTC()

	if err := s.drafts.Put(ctx, d); err != nil {
		return nil, fmt.Errorf("replace draft %s: %w", v.GraphID, err)
	}
	return d, nil
}

// StartRetention begins the hourly checkpoint pruning job.
func (s *Service) StartRetention() error {
	_, err := s.cron.AddFunc(retentionSpec, func() {
		cutoff := time.Now().Add(-s.retention)
		n, err := s.versions.DeleteCheckpointsBefore(context.Background(), cutoff)
		if err != nil {
			slog.Warn("checkpoint retention sweep failed", "err", err)
			return
		}
		if n > 0 {
			slog.Info("pruned expired checkpoints", "count", n)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule retention sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the retention job.
func (s *Service) Stop() {
	s.cron.Stop()
}
