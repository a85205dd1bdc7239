package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arena-tracker/internal/constants"
	"arena-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type GameRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewGameRepository(sqlDB *sql.DB, logger zerolog.Logger) *GameRepository {
	return &GameRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const gameColumns = `
	game_id, home_team_id, away_team_id, date, game_type, season, neutral_arena,
	score_home, score_away,
	bleachers_attendance, lower_tier_attendance, courtside_attendance, luxury_boxes_attendance,
	bleachers_price, lower_tier_price, courtside_price, luxury_boxes_price,
	ticket_revenue, created_at, updated_at`

func scanGame(row interface{ Scan(...any) error }) (domain.Game, error) {
	var game domain.Game
	var attendance, prices [4]sql.NullInt64
	err := row.Scan(
		&game.GameID, &game.HomeTeamID, &game.AwayTeamID, &game.Date,
		&game.GameType, &game.Season, &game.NeutralArena,
		&game.ScoreHome, &game.ScoreAway,
		&attendance[0], &attendance[1], &attendance[2], &attendance[3],
		&prices[0], &prices[1], &prices[2], &prices[3],
		&game.TicketRevenue, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return domain.Game{}, err
	}
	game.Attendance = nullsToVector(attendance)
	game.Prices = nullsToVector(prices)
	return game, nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (*domain.Game, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE game_id = ?`, gameID)

	game, err := scanGame(row)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// HomeGames returns every game hosted in the team's own arena, oldest
// first. Games flagged as played at a neutral arena are excluded: they
// generate no ticket income for the host and never appear in its arena
// history table.
func (r *GameRepository) HomeGames(ctx context.Context, teamID string) ([]domain.Game, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE home_team_id = ? AND neutral_arena = FALSE
		ORDER BY date`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (r *GameRepository) upsertGameTx(ctx context.Context, tx *sql.Tx, game *domain.Game, now time.Time) error {
	attendance := vectorToNulls(game.Attendance)
	prices := vectorToNulls(game.Prices)

	var total sql.NullInt64
	if game.Attendance != nil {
		total = sql.NullInt64{Int64: int64(game.Attendance.Total()), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO games (
			game_id, home_team_id, away_team_id, date, game_type, season, neutral_arena,
			score_home, score_away,
			bleachers_attendance, lower_tier_attendance, courtside_attendance, luxury_boxes_attendance,
			total_attendance,
			bleachers_price, lower_tier_price, courtside_price, luxury_boxes_price,
			ticket_revenue, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id) DO UPDATE SET
			home_team_id = excluded.home_team_id,
			away_team_id = excluded.away_team_id,
			date = excluded.date,
			game_type = excluded.game_type,
			season = excluded.season,
			neutral_arena = excluded.neutral_arena,
			score_home = excluded.score_home,
			score_away = excluded.score_away,
			bleachers_attendance = COALESCE(excluded.bleachers_attendance, games.bleachers_attendance),
			lower_tier_attendance = COALESCE(excluded.lower_tier_attendance, games.lower_tier_attendance),
			courtside_attendance = COALESCE(excluded.courtside_attendance, games.courtside_attendance),
			luxury_boxes_attendance = COALESCE(excluded.luxury_boxes_attendance, games.luxury_boxes_attendance),
			total_attendance = COALESCE(excluded.total_attendance, games.total_attendance),
			bleachers_price = COALESCE(excluded.bleachers_price, games.bleachers_price),
			lower_tier_price = COALESCE(excluded.lower_tier_price, games.lower_tier_price),
			courtside_price = COALESCE(excluded.courtside_price, games.courtside_price),
			luxury_boxes_price = COALESCE(excluded.luxury_boxes_price, games.luxury_boxes_price),
			ticket_revenue = excluded.ticket_revenue,
			updated_at = excluded.updated_at`,
		game.GameID, game.HomeTeamID, game.AwayTeamID, game.Date,
		game.GameType, game.Season, game.NeutralArena,
		game.ScoreHome, game.ScoreAway,
		attendance[0], attendance[1], attendance[2], attendance[3],
		total,
		prices[0], prices[1], prices[2], prices[3],
		game.TicketRevenue, now, now)
	return err
}

func (r *GameRepository) UpsertBatch(ctx context.Context, games []domain.Game) error {
	if len(games) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for i := 0; i < len(games); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(games) {
			end = len(games)
		}

		for _, game := range games[i:end] {
			if err := r.upsertGameTx(ctx, tx, &game, now); err != nil {
				return fmt.Errorf("failed to upsert game %s: %w", game.GameID, err)
			}
		}
	}

	return tx.Commit()
}

// PrefixMaxAttendance returns, per section, the highest attendance
// recorded at any of the team's home games strictly before the given
// date. Sections with no attendance on record are absent from the
// result.
func (r *GameRepository) PrefixMaxAttendance(ctx context.Context, teamID string, before time.Time) (domain.Vector, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			MAX(bleachers_attendance),
			MAX(lower_tier_attendance),
			MAX(courtside_attendance),
			MAX(luxury_boxes_attendance)
		FROM games
		WHERE home_team_id = ? AND neutral_arena = FALSE AND date < ?`, teamID, before)

	var cols [4]sql.NullInt64
	if err := row.Scan(&cols[0], &cols[1], &cols[2], &cols[3]); err != nil {
		return nil, err
	}
	return nullsToVector(cols), nil
}

// ApplyPeriodPrices writes reconstructed prices back to the games table
// in one transaction. Either every game in the map is updated or none
// is; a game ID with no matching row fails the whole batch.
func (r *GameRepository) ApplyPeriodPrices(ctx context.Context, teamID string, prices map[string]domain.Vector) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for gameID, priceVector := range prices {
		cols := vectorToNulls(priceVector)
		res, err := tx.ExecContext(ctx, `
			UPDATE games SET
				bleachers_price = ?,
				lower_tier_price = ?,
				courtside_price = ?,
				luxury_boxes_price = ?,
				updated_at = ?
			WHERE game_id = ? AND home_team_id = ?`,
			cols[0], cols[1], cols[2], cols[3], now, gameID, teamID)
		if err != nil {
			return fmt.Errorf("failed to update prices for game %s: %w", gameID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update prices for game %s: %w", gameID, err)
		}
		if affected == 0 {
			return fmt.Errorf("game %s not found for team %s", gameID, teamID)
		}
	}

	r.logger.Debug().
		Str("team_id", teamID).
		Int("games", len(prices)).
		Msg("applied reconstructed prices")

	return tx.Commit()
}
