package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"arena-tracker/internal/constants"
	"arena-tracker/internal/domain"
	"arena-tracker/internal/reconstruct"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RowSource supplies the raw arena table rows for a team. Satisfied by
// the scrape client; tests substitute a fixture source.
type RowSource interface {
	FetchArenaRows(ctx context.Context, teamID string) ([]reconstruct.RawRow, error)
}

// Reconstruction outcomes. A rejected run persisted nothing.
const (
	OutcomeApplied       = "applied"
	OutcomeWithConflicts = "applied_with_conflicts"
	OutcomeRejected      = "rejected"
)

// TeamReconstruction is the full output of one per-team run.
type TeamReconstruction struct {
	RunID  string `json:"run_id"`
	TeamID string `json:"team_id"`

	Periods  []reconstruct.Period      `json:"periods,omitempty"`
	Result   *reconstruct.AssignResult `json:"result,omitempty"`
	Unparsed []reconstruct.UnparsedRow `json:"unparsed,omitempty"`

	Outcome      string `json:"outcome"`
	Error        string `json:"error,omitempty"`
	GamesUpdated int    `json:"games_updated"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type ReconstructionService struct {
	source RowSource
	teams  TeamStore
	games  GameStore
	logger zerolog.Logger

	mu     sync.RWMutex
	latest map[string]*TeamReconstruction
}

func NewReconstructionService(source RowSource, teams TeamStore, games GameStore, logger zerolog.Logger) *ReconstructionService {
	return &ReconstructionService{
		source: source,
		teams:  teams,
		games:  games,
		logger: logger,
		latest: make(map[string]*TeamReconstruction),
	}
}

// LatestRun returns the most recent completed run for a team, or nil.
func (s *ReconstructionService) LatestRun(teamID string) *TeamReconstruction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest[teamID]
}

// ReconstructTeam runs the whole pipeline for one team: fetch, classify,
// build periods, assign every known game, validate, then write the
// reconstructed prices back in one transaction. Either the whole run
// applies or nothing does.
func (s *ReconstructionService) ReconstructTeam(ctx context.Context, teamID string) (_ *TeamReconstruction, err error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	run := &TeamReconstruction{
		RunID:     runID,
		TeamID:    teamID,
		StartedAt: time.Now(),
	}
	defer func() {
		// Runs that fail partway through are published as rejected, so
		// the latest-run view never shows a half-built result.
		if err != nil {
			run.Outcome = OutcomeRejected
			run.Error = err.Error()
		}
		run.FinishedAt = time.Now()
		s.mu.Lock()
		s.latest[teamID] = run
		s.mu.Unlock()
	}()

	rows, err := s.source.FetchArenaRows(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch arena rows for team %s: %w", teamID, err)
	}

	if err := s.teams.Upsert(ctx, &domain.Team{TeamID: teamID}); err != nil {
		return nil, fmt.Errorf("failed to ensure team %s: %w", teamID, err)
	}

	classified := reconstruct.Classify(rows)
	run.Unparsed = classified.Unparsed
	if len(classified.Unparsed) > 0 {
		s.logger.Warn().
			Str("team_id", teamID).
			Int("unparsed_rows", len(classified.Unparsed)).
			Msg("some arena rows did not classify")
	}

	run.Periods = reconstruct.BuildPeriods(classified.Observations)
	if err := reconstruct.CheckPartition(run.Periods); err != nil {
		return nil, fmt.Errorf("period partition check failed for team %s: %w", teamID, err)
	}

	if err := s.storeScrapedGames(ctx, teamID, classified.Observations); err != nil {
		return nil, err
	}

	known, err := s.knownGames(ctx, teamID, classified.Observations)
	if err != nil {
		return nil, err
	}

	run.Result = reconstruct.AssignGames(run.Periods, known)

	if err := reconstruct.ValidateAssignment(teamID, run.Periods, known, run.Result); err != nil {
		var incomplete *reconstruct.IncompleteAssignmentError
		if errors.As(err, &incomplete) {
			run.Outcome = OutcomeRejected
			run.Error = incomplete.Error()
			s.logger.Error().
				Str("team_id", teamID).
				Str("run_id", runID).
				Strs("missing", incomplete.Missing).
				Strs("duplicated", incomplete.Duplicated).
				Msg("assignment invariant violated, run rejected")
			return run, nil
		}
		return nil, err
	}

	updated, err := s.writeBack(ctx, teamID, run.Periods, run.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to write back prices for team %s: %w", teamID, err)
	}
	run.GamesUpdated = updated

	run.Outcome = OutcomeApplied
	if len(run.Result.Conflicts) > 0 || len(run.Result.Ambiguous) > 0 {
		run.Outcome = OutcomeWithConflicts
	}

	s.logger.Info().
		Str("team_id", teamID).
		Str("run_id", runID).
		Str("outcome", run.Outcome).
		Int("periods", len(run.Periods)).
		Int("games_updated", updated).
		Int("conflicts", len(run.Result.Conflicts)).
		Int("ambiguous", len(run.Result.Ambiguous)).
		Msg("reconstruction run finished")

	return run, nil
}

// storeScrapedGames upserts the games seen in the arena table so the
// price write-back has rows to land on. Attendance already on record is
// preserved for sections the scrape left blank.
func (s *ReconstructionService) storeScrapedGames(ctx context.Context, teamID string, observations []reconstruct.Observation) error {
	var games []domain.Game
	for _, obs := range observations {
		if obs.Kind != reconstruct.GameObservation {
			continue
		}
		games = append(games, domain.Game{
			GameID:     obs.GameID,
			HomeTeamID: teamID,
			Date:       obs.Date,
			Attendance: obs.Attendance.Clone(),
		})
	}
	if err := s.games.UpsertBatch(ctx, games); err != nil {
		return fmt.Errorf("failed to store scraped games for team %s: %w", teamID, err)
	}
	return nil
}

// knownGames merges the scraped game observations (which carry their
// structural position) with the team's stored home games. Stored games
// absent from the table have no position and will rely on date
// evidence.
func (s *ReconstructionService) knownGames(ctx context.Context, teamID string, observations []reconstruct.Observation) ([]reconstruct.KnownGame, error) {
	var known []reconstruct.KnownGame
	seen := make(map[string]bool)

	for _, obs := range observations {
		if obs.Kind != reconstruct.GameObservation {
			continue
		}
		pos := obs.Position
		known = append(known, reconstruct.KnownGame{
			GameID:         obs.GameID,
			Date:           obs.Date,
			Position:       &pos,
			Attendance:     obs.Attendance,
			RecordedPrices: obs.RecordedPrices,
		})
		seen[obs.GameID] = true
	}

	stored, err := s.games.HomeGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored home games for team %s: %w", teamID, err)
	}
	for _, game := range stored {
		if seen[game.GameID] {
			continue
		}
		known = append(known, reconstruct.KnownGame{
			GameID:     game.GameID,
			Date:       game.Date,
			Attendance: game.Attendance,
		})
	}

	return known, nil
}

// writeBack persists period prices onto the assigned games. Ambiguous
// games and games assigned to an unknown-price initial period are
// skipped; everything else lands in one transaction.
func (s *ReconstructionService) writeBack(ctx context.Context, teamID string, periods []reconstruct.Period, result *reconstruct.AssignResult) (int, error) {
	prices := make(map[string]domain.Vector)
	for gameID, a := range result.Assignments {
		if a.Ordinal < 0 {
			continue
		}
		periodPrices := periods[a.Ordinal].Prices
		if periodPrices == nil {
			continue
		}
		prices[gameID] = periodPrices.Clone()
	}

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	if err := s.games.ApplyPeriodPrices(dbCtx, teamID, prices); err != nil {
		return 0, err
	}
	return len(prices), nil
}

// ReconstructTeams runs reconstruction for several teams with bounded
// parallelism. One team's failure does not stop the others; each team's
// entry reports its own outcome or error.
func (s *ReconstructionService) ReconstructTeams(ctx context.Context, teamIDs []string) []*TeamReconstruction {
	results := make([]*TeamReconstruction, len(teamIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.ReconstructParallelism)

	for i, teamID := range teamIDs {
		g.Go(func() error {
			run, err := s.ReconstructTeam(gctx, teamID)
			if err != nil {
				s.logger.Error().Err(err).Str("team_id", teamID).Msg("reconstruction failed")
				run = &TeamReconstruction{
					TeamID:  teamID,
					Outcome: OutcomeRejected,
					Error:   err.Error(),
				}
			}
			results[i] = run
			return nil
		})
	}
	g.Wait()

	return results
}
