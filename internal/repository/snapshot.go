package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arena-tracker/internal/constants"
	"arena-tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(sqlDB *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *SnapshotRepository) SavePriceSnapshot(ctx context.Context, snapshot *domain.PriceSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	prices := vectorToNulls(snapshot.Prices)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_snapshots (
			id, team_id,
			bleachers_price, lower_tier_price, courtside_price, luxury_boxes_price,
			captured_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID, snapshot.TeamID,
		prices[0], prices[1], prices[2], prices[3],
		snapshot.CapturedAt)
	if err != nil {
		return fmt.Errorf("failed to save price snapshot for team %s: %w", snapshot.TeamID, err)
	}
	return nil
}

func (r *SnapshotRepository) PriceSnapshotsByTeam(ctx context.Context, teamID string) ([]domain.PriceSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id,
			bleachers_price, lower_tier_price, courtside_price, luxury_boxes_price,
			captured_at
		FROM price_snapshots
		WHERE team_id = ?
		ORDER BY captured_at DESC
		LIMIT ?`, teamID, constants.SnapshotHistoryLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.PriceSnapshot
	for rows.Next() {
		var snapshot domain.PriceSnapshot
		var prices [4]sql.NullInt64
		err := rows.Scan(
			&snapshot.ID, &snapshot.TeamID,
			&prices[0], &prices[1], &prices[2], &prices[3],
			&snapshot.CapturedAt,
		)
		if err != nil {
			return nil, err
		}
		snapshot.Prices = nullsToVector(prices)
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

func scanArenaSnapshot(row interface{ Scan(...any) error }) (domain.ArenaSnapshot, error) {
	var snapshot domain.ArenaSnapshot
	var capacity [4]int
	err := row.Scan(
		&snapshot.ID, &snapshot.TeamID, &snapshot.ArenaName,
		&capacity[0], &capacity[1], &capacity[2], &capacity[3],
		&snapshot.ExpansionInProgress, &snapshot.CapturedAt,
	)
	if err != nil {
		return domain.ArenaSnapshot{}, err
	}
	snapshot.Capacity = make(domain.Vector, len(domain.Sections))
	for i, section := range domain.Sections {
		snapshot.Capacity[section] = capacity[i]
	}
	return snapshot, nil
}

const arenaSnapshotColumns = `
	id, team_id, arena_name,
	bleachers_capacity, lower_tier_capacity, courtside_capacity, luxury_boxes_capacity,
	expansion_in_progress, captured_at`

func (r *SnapshotRepository) LatestArenaSnapshot(ctx context.Context, teamID string) (*domain.ArenaSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+arenaSnapshotColumns+`
		FROM arena_snapshots
		WHERE team_id = ?
		ORDER BY captured_at DESC
		LIMIT 1`, teamID)

	snapshot, err := scanArenaSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *SnapshotRepository) ArenaSnapshotsByTeam(ctx context.Context, teamID string) ([]domain.ArenaSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+arenaSnapshotColumns+`
		FROM arena_snapshots
		WHERE team_id = ?
		ORDER BY captured_at`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.ArenaSnapshot
	for rows.Next() {
		snapshot, err := scanArenaSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// SaveArenaSnapshotSmart stores a snapshot only when it adds signal: the
// capacities changed since the latest stored snapshot, or the latest one
// was captured on an earlier calendar day. Repeated captures within the
// same day of an unchanged arena are dropped. Returns whether the
// snapshot was stored.
func (r *SnapshotRepository) SaveArenaSnapshotSmart(ctx context.Context, snapshot *domain.ArenaSnapshot) (bool, error) {
	latest, err := r.LatestArenaSnapshot(ctx, snapshot.TeamID)
	if err != nil {
		return false, fmt.Errorf("failed to load latest arena snapshot for team %s: %w", snapshot.TeamID, err)
	}

	if latest != nil && latest.SameCapacities(*snapshot) && sameCalendarDay(latest.CapturedAt, snapshot.CapturedAt) {
		r.logger.Debug().
			Str("team_id", snapshot.TeamID).
			Time("latest", latest.CapturedAt).
			Msg("arena snapshot unchanged, skipping")
		return false, nil
	}

	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	capacity := func(section domain.Section) int { return snapshot.Capacity[section] }

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO arena_snapshots (
			id, team_id, arena_name,
			bleachers_capacity, lower_tier_capacity, courtside_capacity, luxury_boxes_capacity,
			expansion_in_progress, captured_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID, snapshot.TeamID, snapshot.ArenaName,
		capacity(domain.Bleachers), capacity(domain.LowerTier),
		capacity(domain.Courtside), capacity(domain.LuxuryBoxes),
		snapshot.ExpansionInProgress, snapshot.CapturedAt)
	if err != nil {
		return false, fmt.Errorf("failed to save arena snapshot for team %s: %w", snapshot.TeamID, err)
	}

	r.logger.Info().
		Str("team_id", snapshot.TeamID).
		Int("total_capacity", snapshot.TotalCapacity()).
		Bool("expansion_in_progress", snapshot.ExpansionInProgress).
		Msg("arena snapshot stored")

	return true, nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
