// Package server exposes the reconstruction engine over a thin JSON
// HTTP API.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"arena-tracker/internal/domain"
	"arena-tracker/internal/service"

	"github.com/rs/zerolog"
)

type Server struct {
	teams          *service.TeamService
	reconstruction *service.ReconstructionService
	capacity       *service.CapacityService
	snapshots      *service.SnapshotService
	logger         zerolog.Logger
}

func New(
	teams *service.TeamService,
	reconstruction *service.ReconstructionService,
	capacity *service.CapacityService,
	snapshots *service.SnapshotService,
	logger zerolog.Logger,
) *Server {
	return &Server{
		teams:          teams,
		reconstruction: reconstruction,
		capacity:       capacity,
		snapshots:      snapshots,
		logger:         logger,
	}
}

// Routes registers every API route on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/teams", s.handleListTeams)
	mux.HandleFunc("GET /api/v1/teams/{teamID}", s.handleGetTeam)
	mux.HandleFunc("PUT /api/v1/teams/{teamID}", s.handleRegisterTeam)
	mux.HandleFunc("POST /api/v1/teams/{teamID}/reconstruct", s.handleReconstructTeam)
	mux.HandleFunc("POST /api/v1/reconstruct", s.handleReconstructBatch)
	mux.HandleFunc("GET /api/v1/teams/{teamID}/reconstruction", s.handleLatestRun)
	mux.HandleFunc("GET /api/v1/teams/{teamID}/capacity", s.handleCapacity)
	mux.HandleFunc("GET /api/v1/teams/{teamID}/snapshots", s.handleListSnapshots)
	mux.HandleFunc("POST /api/v1/teams/{teamID}/snapshots/arena", s.handleIngestArenaSnapshot)
	mux.HandleFunc("POST /api/v1/teams/{teamID}/snapshots/prices", s.handleIngestPriceSnapshot)
}

type teamResponse struct {
	TeamID    string    `json:"team_id"`
	Name      string    `json:"name,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func teamJSON(team domain.Team) teamResponse {
	return teamResponse{
		TeamID:    team.TeamID,
		Name:      team.Name,
		Country:   team.Country,
		CreatedAt: team.CreatedAt,
		UpdatedAt: team.UpdatedAt,
	}
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.teams.List(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	out := make([]teamResponse, len(teams))
	for i, team := range teams {
		out[i] = teamJSON(team)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"teams": out})
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")

	team, err := s.teams.Get(r.Context(), teamID)
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, r, http.StatusNotFound, errors.New("team "+teamID+" not found"))
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, teamJSON(*team))
}

type registerTeamRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

func (s *Server) handleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")

	var req registerTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	team := &domain.Team{TeamID: teamID, Name: req.Name, Country: req.Country}
	if err := s.teams.Register(r.Context(), team); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"team_id": teamID})
}

func (s *Server) handleReconstructTeam(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")

	run, err := s.reconstruction.ReconstructTeam(r.Context(), teamID)
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

type batchRequest struct {
	TeamIDs []string `json:"team_ids"`
}

func (s *Server) handleReconstructBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if len(req.TeamIDs) == 0 {
		s.writeError(w, r, http.StatusBadRequest, errors.New("team_ids is required"))
		return
	}

	runs := s.reconstruction.ReconstructTeams(r.Context(), req.TeamIDs)
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")

	run := s.reconstruction.LatestRun(teamID)
	if run == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("no reconstruction run for team "+teamID))
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("game_id is required"))
		return
	}

	result, err := s.capacity.CapacityForGame(r.Context(), teamID, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, r, http.StatusNotFound, errors.New("game "+gameID+" not found"))
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")

	arena, err := s.snapshots.ArenaHistory(r.Context(), teamID)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	prices, err := s.snapshots.PriceHistory(r.Context(), teamID)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"team_id": teamID,
		"arena":   arenaSnapshotsJSON(arena),
		"prices":  priceSnapshotsJSON(prices),
	})
}

type arenaSnapshotRequest struct {
	ArenaName           string         `json:"arena_name"`
	Capacity            map[string]int `json:"capacity"`
	ExpansionInProgress bool           `json:"expansion_in_progress"`
	CapturedAt          time.Time      `json:"captured_at"`
}

func (s *Server) handleIngestArenaSnapshot(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")

	var req arenaSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	snapshot := &domain.ArenaSnapshot{
		TeamID:              teamID,
		ArenaName:           req.ArenaName,
		Capacity:            vectorFromJSON(req.Capacity),
		ExpansionInProgress: req.ExpansionInProgress,
		CapturedAt:          req.CapturedAt,
	}

	stored, err := s.snapshots.RecordArenaSnapshot(r.Context(), snapshot)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stored": stored, "id": snapshot.ID})
}

type priceSnapshotRequest struct {
	Prices     map[string]int `json:"prices"`
	CapturedAt time.Time      `json:"captured_at"`
}

func (s *Server) handleIngestPriceSnapshot(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")

	var req priceSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	snapshot := &domain.PriceSnapshot{
		TeamID:     teamID,
		Prices:     vectorFromJSON(req.Prices),
		CapturedAt: req.CapturedAt,
	}

	if err := s.snapshots.RecordPriceSnapshot(r.Context(), snapshot); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": snapshot.ID})
}

func vectorFromJSON(m map[string]int) domain.Vector {
	if m == nil {
		return nil
	}
	v := make(domain.Vector, len(m))
	for key, n := range m {
		v[domain.Section(key)] = n
	}
	return v
}

func vectorJSON(v domain.Vector) map[string]int {
	if v == nil {
		return nil
	}
	out := make(map[string]int, len(v))
	for section, n := range v {
		out[string(section)] = n
	}
	return out
}

type arenaSnapshotResponse struct {
	ID                  string         `json:"id"`
	ArenaName           string         `json:"arena_name,omitempty"`
	Capacity            map[string]int `json:"capacity"`
	TotalCapacity       int            `json:"total_capacity"`
	ExpansionInProgress bool           `json:"expansion_in_progress"`
	CapturedAt          time.Time      `json:"captured_at"`
}

func arenaSnapshotsJSON(snapshots []domain.ArenaSnapshot) []arenaSnapshotResponse {
	out := make([]arenaSnapshotResponse, len(snapshots))
	for i, snap := range snapshots {
		out[i] = arenaSnapshotResponse{
			ID:                  snap.ID,
			ArenaName:           snap.ArenaName,
			Capacity:            vectorJSON(snap.Capacity),
			TotalCapacity:       snap.TotalCapacity(),
			ExpansionInProgress: snap.ExpansionInProgress,
			CapturedAt:          snap.CapturedAt,
		}
	}
	return out
}

type priceSnapshotResponse struct {
	ID         string         `json:"id"`
	Prices     map[string]int `json:"prices"`
	CapturedAt time.Time      `json:"captured_at"`
}

func priceSnapshotsJSON(snapshots []domain.PriceSnapshot) []priceSnapshotResponse {
	out := make([]priceSnapshotResponse, len(snapshots))
	for i, snap := range snapshots {
		out[i] = priceSnapshotResponse{
			ID:         snap.ID,
			Prices:     vectorJSON(snap.Prices),
			CapturedAt: snap.CapturedAt,
		}
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Error().
		Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request failed")
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
