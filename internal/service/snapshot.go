package service

import (
	"context"
	"fmt"
	"time"

	"arena-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type SnapshotService struct {
	snapshots SnapshotStore
	logger    zerolog.Logger
}

func NewSnapshotService(snapshots SnapshotStore, logger zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		snapshots: snapshots,
		logger:    logger,
	}
}

// RecordArenaSnapshot ingests a capacity observation. Duplicate
// same-day captures of an unchanged arena are dropped; the return value
// reports whether this one was kept.
func (s *SnapshotService) RecordArenaSnapshot(ctx context.Context, snapshot *domain.ArenaSnapshot) (bool, error) {
	if snapshot.TeamID == "" {
		return false, fmt.Errorf("arena snapshot without team id")
	}
	if !snapshot.Capacity.Complete() {
		return false, fmt.Errorf("arena snapshot for team %s has incomplete capacities", snapshot.TeamID)
	}
	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = time.Now()
	}
	return s.snapshots.SaveArenaSnapshotSmart(ctx, snapshot)
}

// RecordPriceSnapshot ingests a direct observation of the team's
// current ticket prices.
func (s *SnapshotService) RecordPriceSnapshot(ctx context.Context, snapshot *domain.PriceSnapshot) error {
	if snapshot.TeamID == "" {
		return fmt.Errorf("price snapshot without team id")
	}
	if !snapshot.Prices.Complete() {
		return fmt.Errorf("price snapshot for team %s has incomplete prices", snapshot.TeamID)
	}
	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = time.Now()
	}
	return s.snapshots.SavePriceSnapshot(ctx, snapshot)
}

func (s *SnapshotService) ArenaHistory(ctx context.Context, teamID string) ([]domain.ArenaSnapshot, error) {
	return s.snapshots.ArenaSnapshotsByTeam(ctx, teamID)
}

func (s *SnapshotService) PriceHistory(ctx context.Context, teamID string) ([]domain.PriceSnapshot, error) {
	return s.snapshots.PriceSnapshotsByTeam(ctx, teamID)
}
