package service

import (
	"context"
	"time"

	"arena-tracker/internal/domain"
)

// TeamStore is the team persistence surface. Implemented by
// repository.TeamRepository.
type TeamStore interface {
	Get(ctx context.Context, teamID string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	Upsert(ctx context.Context, team *domain.Team) error
}

// GameStore is the slice of game persistence the services need.
// Implemented by repository.GameRepository.
type GameStore interface {
	GetByID(ctx context.Context, gameID string) (*domain.Game, error)
	HomeGames(ctx context.Context, teamID string) ([]domain.Game, error)
	UpsertBatch(ctx context.Context, games []domain.Game) error
	PrefixMaxAttendance(ctx context.Context, teamID string, before time.Time) (domain.Vector, error)
	ApplyPeriodPrices(ctx context.Context, teamID string, prices map[string]domain.Vector) error
}

// SnapshotStore is the snapshot persistence surface. Implemented by
// repository.SnapshotRepository.
type SnapshotStore interface {
	SaveArenaSnapshotSmart(ctx context.Context, snapshot *domain.ArenaSnapshot) (bool, error)
	SavePriceSnapshot(ctx context.Context, snapshot *domain.PriceSnapshot) error
	ArenaSnapshotsByTeam(ctx context.Context, teamID string) ([]domain.ArenaSnapshot, error)
	PriceSnapshotsByTeam(ctx context.Context, teamID string) ([]domain.PriceSnapshot, error)
}
