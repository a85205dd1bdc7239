package service

import (
	"context"
	"testing"

	"arena-tracker/internal/domain"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTeamService(t *testing.T) {
	Convey("Given a team service", t, func() {
		store := newFakeTeamStore()
		svc := NewTeamService(store, zerolog.Nop())

		Convey("Registering a team makes it listable and fetchable", func() {
			err := svc.Register(context.Background(), &domain.Team{
				TeamID:  "t1",
				Name:    "Hill Giants",
				Country: "Utopia",
			})
			So(err, ShouldBeNil)

			teams, err := svc.List(context.Background())
			So(err, ShouldBeNil)
			So(teams, ShouldHaveLength, 1)
			So(teams[0].Name, ShouldEqual, "Hill Giants")

			team, err := svc.Get(context.Background(), "t1")
			So(err, ShouldBeNil)
			So(team.Country, ShouldEqual, "Utopia")
		})

		Convey("Registering without a team id is refused", func() {
			err := svc.Register(context.Background(), &domain.Team{Name: "Nameless"})
			So(err, ShouldNotBeNil)
		})

		Convey("A bare upsert does not blank out an existing name", func() {
			So(svc.Register(context.Background(), &domain.Team{TeamID: "t1", Name: "Hill Giants"}), ShouldBeNil)
			So(store.Upsert(context.Background(), &domain.Team{TeamID: "t1"}), ShouldBeNil)

			team, err := svc.Get(context.Background(), "t1")
			So(err, ShouldBeNil)
			So(team.Name, ShouldEqual, "Hill Giants")
		})
	})
}
