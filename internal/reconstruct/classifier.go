package reconstruct

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"arena-tracker/internal/domain"
)

// DateLayout is the day-granular date format used by the arena table.
const DateLayout = "01/02/2006"

// priceUpdateMarker appears in the opponent cell of price-update rows.
const priceUpdateMarker = "Ticket Price Update"

// ClassifyResult holds the typed observations recovered from the raw
// rows plus the rows that matched neither shape.
type ClassifyResult struct {
	Observations []Observation
	Unparsed     []UnparsedRow
}

// Classify turns raw table rows into typed observations.
//
// A row is a price update when its opponent cell carries the update
// marker or its total cell is -1; its four section cells must then all
// parse as prices. Any other row is a game row and must carry a game ID
// and a parseable date; attendance cells may be partially missing.
// Rows matching neither shape are dropped and reported, not fatal.
//
// The result is stable-sorted by structural position ascending, i.e.
// most recent first, matching the source order.
func Classify(rows []RawRow) ClassifyResult {
	var result ClassifyResult

	for _, row := range rows {
		obs, reason := classifyRow(row)
		if reason != "" {
			result.Unparsed = append(result.Unparsed, UnparsedRow{Position: row.Position, Reason: reason})
			continue
		}
		result.Observations = append(result.Observations, obs)
	}

	sort.SliceStable(result.Observations, func(i, j int) bool {
		return result.Observations[i].Position < result.Observations[j].Position
	})

	return result
}

func classifyRow(row RawRow) (Observation, string) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(row.DateRaw))
	if err != nil {
		return Observation{}, "unparseable date: " + row.DateRaw
	}

	if isPriceUpdateRow(row) {
		prices := make(domain.Vector, len(domain.Sections))
		for i, section := range domain.Sections {
			n, err := parseCell(row.SectionCells[i])
			if err != nil {
				return Observation{}, "price update with unparseable " + string(section) + " price"
			}
			prices[section] = n
		}
		return Observation{
			Kind:     PriceChangeObservation,
			Position: row.Position,
			Date:     date,
			Prices:   prices,
		}, ""
	}

	if row.GameID == "" {
		return Observation{}, "game row without game id"
	}

	attendance := parsePartialVector(row.SectionCells)
	recorded := parsePartialVector(row.PriceCells)

	return Observation{
		Kind:           GameObservation,
		Position:       row.Position,
		Date:           date,
		GameID:         row.GameID,
		Attendance:     attendance,
		RecordedPrices: recorded,
	}, ""
}

func isPriceUpdateRow(row RawRow) bool {
	if strings.Contains(row.Opponent, priceUpdateMarker) {
		return true
	}
	return strings.TrimSpace(row.TotalCell) == "-1"
}

// parsePartialVector parses the cells that hold integers and skips the
// rest; returns nil when no cell parses.
func parsePartialVector(cells [4]string) domain.Vector {
	var v domain.Vector
	for i, section := range domain.Sections {
		n, err := parseCell(cells[i])
		if err != nil {
			continue
		}
		if v == nil {
			v = make(domain.Vector, len(domain.Sections))
		}
		v[section] = n
	}
	return v
}

func parseCell(cell string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(cell, ",", "")))
}
