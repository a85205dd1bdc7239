package service

import (
	"context"
	"fmt"

	"arena-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type TeamService struct {
	teams  TeamStore
	logger zerolog.Logger
}

func NewTeamService(teams TeamStore, logger zerolog.Logger) *TeamService {
	return &TeamService{
		teams:  teams,
		logger: logger,
	}
}

func (s *TeamService) Get(ctx context.Context, teamID string) (*domain.Team, error) {
	return s.teams.Get(ctx, teamID)
}

func (s *TeamService) List(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// Register creates or updates a team record.
func (s *TeamService) Register(ctx context.Context, team *domain.Team) error {
	if team.TeamID == "" {
		return fmt.Errorf("team id is required")
	}
	if err := s.teams.Upsert(ctx, team); err != nil {
		return err
	}
	s.logger.Info().Str("team_id", team.TeamID).Str("name", team.Name).Msg("team registered")
	return nil
}
