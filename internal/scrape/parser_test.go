package scrape

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const arenaPage = `
<html><body>
<table>
  <tr class="tableHeader">
    <td>Date</td><td>Opponent</td>
    <td>Bleachers</td><td>Lower Tier</td><td>Courtside</td><td>Luxury Boxes</td>
    <td>Total</td>
  </tr>
  <tr>
    <td>06/21/2025</td>
    <td><a href="/match/99120/boxscore">BC Riders</a></td>
    <td>8,201</td><td>2,410</td><td>312</td><td>40</td>
    <td>10,963</td>
  </tr>
  <tr>
    <td>06/14/2025</td>
    <td>Ticket Price Update</td>
    <td>12</td><td>35</td><td>90</td><td>950</td>
    <td>-1</td>
  </tr>
  <tr>
    <td>06/07/2025</td>
    <td><a href="/match/99031">Hill Giants</a></td>
    <td>7,995</td><td>2,388</td><td></td><td>38</td>
    <td>-</td>
  </tr>
</table>
</body></html>`

func TestParseArenaTable(t *testing.T) {
	Convey("Given a team's arena history page", t, func() {
		rows, err := ParseArenaTable([]byte(arenaPage))
		So(err, ShouldBeNil)

		Convey("The header row is skipped and positions follow display order", func() {
			So(rows, ShouldHaveLength, 3)
			So(rows[0].Position, ShouldEqual, 0)
			So(rows[1].Position, ShouldEqual, 1)
			So(rows[2].Position, ShouldEqual, 2)
		})

		Convey("Game rows carry the ID from their match link", func() {
			So(rows[0].GameID, ShouldEqual, "99120")
			So(rows[2].GameID, ShouldEqual, "99031")
		})

		Convey("Cell texts are trimmed and kept raw", func() {
			So(rows[0].DateRaw, ShouldEqual, "06/21/2025")
			So(rows[0].Opponent, ShouldEqual, "BC Riders")
			So(rows[0].SectionCells, ShouldResemble, [4]string{"8,201", "2,410", "312", "40"})
			So(rows[0].TotalCell, ShouldEqual, "10,963")
		})

		Convey("Price update rows have no game ID and a -1 total", func() {
			So(rows[1].GameID, ShouldBeEmpty)
			So(rows[1].Opponent, ShouldEqual, "Ticket Price Update")
			So(rows[1].TotalCell, ShouldEqual, "-1")
			So(rows[1].SectionCells, ShouldResemble, [4]string{"12", "35", "90", "950"})
		})

		Convey("Missing section cells stay empty", func() {
			So(rows[2].SectionCells[2], ShouldBeEmpty)
		})
	})
}

func TestParseArenaTableEmpty(t *testing.T) {
	Convey("Given a page with no arena table", t, func() {
		rows, err := ParseArenaTable([]byte(`<html><body><p>nothing here</p></body></html>`))

		Convey("No rows and no error come back", func() {
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})
	})
}
