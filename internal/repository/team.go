package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arena-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type TeamRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTeamRepository(sqlDB *sql.DB, logger zerolog.Logger) *TeamRepository {
	return &TeamRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *TeamRepository) Get(ctx context.Context, teamID string) (*domain.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT team_id, name, country, created_at, updated_at
		FROM teams
		WHERE team_id = ?`, teamID)

	var team domain.Team
	err := row.Scan(&team.TeamID, &team.Name, &team.Country, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id, name, country, created_at, updated_at
		FROM teams
		ORDER BY team_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.TeamID, &team.Name, &team.Country, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// Upsert inserts or refreshes a team. Empty name/country values never
// overwrite what is already stored.
func (r *TeamRepository) Upsert(ctx context.Context, team *domain.Team) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (team_id, name, country, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (team_id) DO UPDATE SET
			name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE teams.name END,
			country = CASE WHEN excluded.country <> '' THEN excluded.country ELSE teams.country END,
			updated_at = excluded.updated_at`,
		team.TeamID, team.Name, team.Country, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert team %s: %w", team.TeamID, err)
	}
	return nil
}
