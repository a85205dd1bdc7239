package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"arena-tracker/internal/domain"
	"arena-tracker/internal/reconstruct"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	rows map[string][]reconstruct.RawRow
}

func (f *fakeSource) FetchArenaRows(_ context.Context, teamID string) ([]reconstruct.RawRow, error) {
	rows, ok := f.rows[teamID]
	if !ok {
		return nil, fmt.Errorf("no fixture for team %s", teamID)
	}
	return rows, nil
}

type fakeTeamStore struct {
	teams map[string]domain.Team
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{teams: make(map[string]domain.Team)}
}

func (f *fakeTeamStore) Get(_ context.Context, teamID string) (*domain.Team, error) {
	team, ok := f.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("team %s not found", teamID)
	}
	return &team, nil
}

func (f *fakeTeamStore) List(context.Context) ([]domain.Team, error) {
	var out []domain.Team
	for _, team := range f.teams {
		out = append(out, team)
	}
	return out, nil
}

func (f *fakeTeamStore) Upsert(_ context.Context, team *domain.Team) error {
	if existing, ok := f.teams[team.TeamID]; ok {
		if team.Name == "" {
			team.Name = existing.Name
		}
		if team.Country == "" {
			team.Country = existing.Country
		}
	}
	f.teams[team.TeamID] = *team
	return nil
}

type fakeGameStore struct {
	games   map[string]domain.Game
	applied map[string]domain.Vector
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{
		games:   make(map[string]domain.Game),
		applied: make(map[string]domain.Vector),
	}
}

func (f *fakeGameStore) GetByID(_ context.Context, gameID string) (*domain.Game, error) {
	game, ok := f.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s not found", gameID)
	}
	return &game, nil
}

func (f *fakeGameStore) HomeGames(_ context.Context, teamID string) ([]domain.Game, error) {
	var out []domain.Game
	for _, game := range f.games {
		if game.HomeTeamID == teamID && !game.NeutralArena {
			out = append(out, game)
		}
	}
	return out, nil
}

func (f *fakeGameStore) UpsertBatch(_ context.Context, games []domain.Game) error {
	for _, game := range games {
		if existing, ok := f.games[game.GameID]; ok {
			if game.Attendance == nil {
				game.Attendance = existing.Attendance
			}
			if game.Prices == nil {
				game.Prices = existing.Prices
			}
		}
		f.games[game.GameID] = game
	}
	return nil
}

func (f *fakeGameStore) PrefixMaxAttendance(_ context.Context, teamID string, before time.Time) (domain.Vector, error) {
	var highest domain.Vector
	for _, game := range f.games {
		if game.HomeTeamID != teamID || game.NeutralArena || !game.Date.Before(before) {
			continue
		}
		for section, n := range game.Attendance {
			if highest == nil {
				highest = make(domain.Vector)
			}
			if n > highest[section] {
				highest[section] = n
			}
		}
	}
	return highest, nil
}

func (f *fakeGameStore) ApplyPeriodPrices(_ context.Context, teamID string, prices map[string]domain.Vector) error {
	for gameID, priceVector := range prices {
		game, ok := f.games[gameID]
		if !ok || game.HomeTeamID != teamID {
			return fmt.Errorf("game %s not found for team %s", gameID, teamID)
		}
		game.Prices = priceVector.Clone()
		f.games[gameID] = game
		f.applied[gameID] = priceVector.Clone()
	}
	return nil
}

func gameRow(pos int, date, gameID, total string, attendance [4]string) reconstruct.RawRow {
	return reconstruct.RawRow{
		Position:     pos,
		DateRaw:      date,
		Opponent:     "Opponent " + gameID,
		GameID:       gameID,
		SectionCells: attendance,
		TotalCell:    total,
	}
}

func priceRow(pos int, date string, prices [4]string) reconstruct.RawRow {
	return reconstruct.RawRow{
		Position:     pos,
		DateRaw:      date,
		Opponent:     "Ticket Price Update",
		SectionCells: prices,
		TotalCell:    "-1",
	}
}

func TestReconstructTeam(t *testing.T) {
	Convey("Given a team with two pricing periods in its arena table", t, func() {
		rows := []reconstruct.RawRow{
			gameRow(0, "06/21/2025", "99120", "10963", [4]string{"8201", "2410", "312", "40"}),
			priceRow(1, "06/14/2025", [4]string{"14", "40", "95", "980"}),
			gameRow(2, "06/07/2025", "99031", "10421", [4]string{"7995", "2388", "0", "38"}),
			priceRow(3, "06/01/2025", [4]string{"12", "35", "90", "950"}),
		}

		source := &fakeSource{rows: map[string][]reconstruct.RawRow{"t1": rows}}
		teams := newFakeTeamStore()
		store := newFakeGameStore()
		svc := NewReconstructionService(source, teams, store, zerolog.Nop())

		Convey("When the team is reconstructed", func() {
			run, err := svc.ReconstructTeam(context.Background(), "t1")
			So(err, ShouldBeNil)

			Convey("The run applies cleanly with two periods", func() {
				So(run.Outcome, ShouldEqual, OutcomeApplied)
				So(run.Periods, ShouldHaveLength, 2)
				So(run.RunID, ShouldNotBeEmpty)
			})

			Convey("Each game got its period's prices written back", func() {
				So(run.GamesUpdated, ShouldEqual, 2)
				So(store.applied["99031"], ShouldResemble, domain.Vector{
					domain.Bleachers: 12, domain.LowerTier: 35,
					domain.Courtside: 90, domain.LuxuryBoxes: 950,
				})
				So(store.applied["99120"], ShouldResemble, domain.Vector{
					domain.Bleachers: 14, domain.LowerTier: 40,
					domain.Courtside: 95, domain.LuxuryBoxes: 980,
				})
			})

			Convey("Assignments carry structural evidence", func() {
				So(run.Result.Assignments["99031"].Evidence, ShouldEqual, reconstruct.EvidenceStructural)
				So(run.Result.Assignments["99031"].Ordinal, ShouldEqual, 0)
				So(run.Result.Assignments["99120"].Ordinal, ShouldEqual, 1)
			})

			Convey("The run is retrievable as the team's latest", func() {
				So(svc.LatestRun("t1"), ShouldEqual, run)
			})

			Convey("The team row was created for the stored games to reference", func() {
				team, err := teams.Get(context.Background(), "t1")
				So(err, ShouldBeNil)
				So(team.TeamID, ShouldEqual, "t1")
			})
		})

		Convey("When a stored-only game falls strictly between two price changes", func() {
			store.games["88001"] = domain.Game{
				GameID:     "88001",
				HomeTeamID: "t1",
				Date:       time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			}

			run, err := svc.ReconstructTeam(context.Background(), "t1")
			So(err, ShouldBeNil)

			Convey("It is assigned by date fallback and updated too", func() {
				So(run.Result.Assignments["88001"].Evidence, ShouldEqual, reconstruct.EvidenceDateFallback)
				So(run.Result.Assignments["88001"].Ordinal, ShouldEqual, 0)
				So(run.GamesUpdated, ShouldEqual, 3)
			})
		})

		Convey("When a later fetch for the team fails", func() {
			first, err := svc.ReconstructTeam(context.Background(), "t1")
			So(err, ShouldBeNil)
			So(first.Outcome, ShouldEqual, OutcomeApplied)

			delete(source.rows, "t1")
			_, err = svc.ReconstructTeam(context.Background(), "t1")
			So(err, ShouldNotBeNil)

			Convey("The failed attempt is published as rejected, never blank", func() {
				latest := svc.LatestRun("t1")
				So(latest, ShouldNotBeNil)
				So(latest.Outcome, ShouldEqual, OutcomeRejected)
				So(latest.Error, ShouldNotBeEmpty)
			})
		})

		Convey("When a stored-only game sits exactly on a price change date", func() {
			store.games["88002"] = domain.Game{
				GameID:     "88002",
				HomeTeamID: "t1",
				Date:       time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
			}

			run, err := svc.ReconstructTeam(context.Background(), "t1")
			So(err, ShouldBeNil)

			Convey("It is surfaced as ambiguous and excluded from write-back", func() {
				So(run.Outcome, ShouldEqual, OutcomeWithConflicts)
				So(run.Result.Ambiguous, ShouldContain, "88002")
				So(run.GamesUpdated, ShouldEqual, 2)
				So(store.applied, ShouldNotContainKey, "88002")
			})
		})
	})
}

func TestReconstructTeams(t *testing.T) {
	Convey("Given a batch where one team's fetch fails", t, func() {
		rows := []reconstruct.RawRow{
			gameRow(0, "06/21/2025", "99120", "10963", [4]string{"8201", "2410", "312", "40"}),
			priceRow(1, "06/01/2025", [4]string{"12", "35", "90", "950"}),
		}

		svc := NewReconstructionService(
			&fakeSource{rows: map[string][]reconstruct.RawRow{"good": rows}},
			newFakeTeamStore(),
			newFakeGameStore(),
			zerolog.Nop(),
		)

		results := svc.ReconstructTeams(context.Background(), []string{"good", "broken"})

		Convey("The healthy team still applies", func() {
			So(results, ShouldHaveLength, 2)
			So(results[0].TeamID, ShouldEqual, "good")
			So(results[0].Outcome, ShouldEqual, OutcomeApplied)
		})

		Convey("The failed team reports its own error", func() {
			So(results[1].TeamID, ShouldEqual, "broken")
			So(results[1].Outcome, ShouldEqual, OutcomeRejected)
			So(results[1].Error, ShouldNotBeEmpty)
		})
	})
}
