package reconstruct_test

import (
	"testing"
	"time"

	"arena-tracker/internal/domain"
	"arena-tracker/internal/reconstruct"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given raw rows scraped from an arena table", t, func() {
		rows := []reconstruct.RawRow{
			{
				Position: 0, DateRaw: "06/24/2025", Opponent: "Harbor Hawks",
				GameID:       "401223",
				SectionCells: [4]string{"312", "148", "20", "8"},
				TotalCell:    "488",
			},
			{
				Position: 1, DateRaw: "06/20/2025", Opponent: "Ticket Price Update",
				SectionCells: [4]string{"14", "30", "90", "500"},
				TotalCell:    "-1",
			},
			{
				Position: 2, DateRaw: "06/17/2025", Opponent: "River Cats",
				GameID:       "401101",
				SectionCells: [4]string{"280", "", "18", "7"},
				TotalCell:    "305",
			},
		}

		Convey("When the rows are classified", func() {
			result := reconstruct.Classify(rows)

			Convey("Then every row yields a typed observation", func() {
				So(result.Observations, ShouldHaveLength, 3)
				So(result.Unparsed, ShouldBeEmpty)
			})

			Convey("Then observations keep their structural position, most recent first", func() {
				So(result.Observations[0].Position, ShouldEqual, 0)
				So(result.Observations[1].Position, ShouldEqual, 1)
				So(result.Observations[2].Position, ShouldEqual, 2)
			})

			Convey("Then the price update row becomes a complete price change", func() {
				obs := result.Observations[1]
				So(obs.Kind, ShouldEqual, reconstruct.PriceChangeObservation)
				So(obs.Prices.Complete(), ShouldBeTrue)
				So(obs.Prices[domain.Bleachers], ShouldEqual, 14)
				So(obs.Prices[domain.LuxuryBoxes], ShouldEqual, 500)
				So(obs.Date.Equal(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})

			Convey("Then game rows keep partial attendance", func() {
				obs := result.Observations[2]
				So(obs.Kind, ShouldEqual, reconstruct.GameObservation)
				So(obs.GameID, ShouldEqual, "401101")
				So(obs.Attendance[domain.Bleachers], ShouldEqual, 280)
				_, hasLowerTier := obs.Attendance[domain.LowerTier]
				So(hasLowerTier, ShouldBeFalse)
			})
		})

		Convey("When a row matches neither shape", func() {
			bad := append(rows, reconstruct.RawRow{
				Position: 3, DateRaw: "06/10/2025", Opponent: "Mystery FC",
				SectionCells: [4]string{"1", "2", "3", "4"},
				TotalCell:    "10",
			})
			result := reconstruct.Classify(bad)

			Convey("Then it is dropped and reported, not fatal", func() {
				So(result.Observations, ShouldHaveLength, 3)
				So(result.Unparsed, ShouldHaveLength, 1)
				So(result.Unparsed[0].Position, ShouldEqual, 3)
				So(result.Unparsed[0].Reason, ShouldContainSubstring, "game id")
			})
		})

		Convey("When a price update row has an unparseable price cell", func() {
			bad := []reconstruct.RawRow{{
				Position: 0, DateRaw: "06/20/2025", Opponent: "Ticket Price Update",
				SectionCells: [4]string{"14", "x", "90", "500"},
				TotalCell:    "-1",
			}}
			result := reconstruct.Classify(bad)

			Convey("Then the row is reported as unparsed", func() {
				So(result.Observations, ShouldBeEmpty)
				So(result.Unparsed, ShouldHaveLength, 1)
			})
		})

		Convey("When a row carries an unparseable date", func() {
			bad := []reconstruct.RawRow{{
				Position: 0, DateRaw: "not-a-date", Opponent: "Harbor Hawks", GameID: "9",
			}}
			result := reconstruct.Classify(bad)

			Convey("Then the row is reported as unparsed", func() {
				So(result.Observations, ShouldBeEmpty)
				So(result.Unparsed, ShouldHaveLength, 1)
				So(result.Unparsed[0].Reason, ShouldContainSubstring, "date")
			})
		})

		Convey("When attendance cells use thousands separators", func() {
			sep := []reconstruct.RawRow{{
				Position: 0, DateRaw: "06/24/2025", Opponent: "Harbor Hawks",
				GameID:       "77",
				SectionCells: [4]string{"10,312", "3,148", "420", "50"},
				TotalCell:    "13,930",
			}}
			result := reconstruct.Classify(sep)

			Convey("Then the values parse", func() {
				So(result.Observations, ShouldHaveLength, 1)
				So(result.Observations[0].Attendance[domain.Bleachers], ShouldEqual, 10312)
			})
		})
	})
}
