package service

import (
	"context"
	"fmt"

	"arena-tracker/internal/reconstruct"

	"github.com/rs/zerolog"
)

// GameCapacity answers "how many seats did each section hold when this
// game was played", with explicit uncertainty when snapshots do not
// pin the value down.
type GameCapacity struct {
	TeamID   string                        `json:"team_id"`
	GameID   string                        `json:"game_id"`
	Sections []reconstruct.SectionCapacity `json:"sections"`
}

type CapacityService struct {
	games     GameStore
	snapshots SnapshotStore
	logger    zerolog.Logger
}

func NewCapacityService(games GameStore, snapshots SnapshotStore, logger zerolog.Logger) *CapacityService {
	return &CapacityService{
		games:     games,
		snapshots: snapshots,
		logger:    logger,
	}
}

func (s *CapacityService) CapacityForGame(ctx context.Context, teamID, gameID string) (*GameCapacity, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	if game.HomeTeamID != teamID {
		return nil, fmt.Errorf("game %s was not hosted by team %s", gameID, teamID)
	}

	snapshots, err := s.snapshots.ArenaSnapshotsByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load arena snapshots for team %s: %w", teamID, err)
	}

	priorMax, err := s.games.PrefixMaxAttendance(ctx, teamID, game.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to compute prior max attendance for team %s: %w", teamID, err)
	}

	sections := reconstruct.ReconcileCapacity(snapshots, reconstruct.CapacityQuery{
		At:                 game.Date,
		Attendance:         game.Attendance,
		PriorMaxAttendance: priorMax,
	})

	s.logger.Debug().
		Str("team_id", teamID).
		Str("game_id", gameID).
		Int("snapshots", len(snapshots)).
		Msg("capacity reconciled")

	return &GameCapacity{
		TeamID:   teamID,
		GameID:   gameID,
		Sections: sections,
	}, nil
}
