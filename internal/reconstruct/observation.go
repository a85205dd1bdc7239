// Package reconstruct rebuilds a team's pricing and capacity history from
// partial, out-of-order observations scraped from its arena page.
//
// The arena table lists games and ticket price updates in display order:
// row 0 is the most recent event, higher row indexes lie further in the
// past. That display order (the "structural position") is a total order
// and is the primary ordering evidence; calendar dates are day-granular
// and may collide between unrelated events.
package reconstruct

import (
	"time"

	"arena-tracker/internal/domain"
)

// RawRow is a single data row extracted from the arena table, before
// classification. Cell values are kept as raw strings; Position is the
// row's index in the source table (0 = most recent).
type RawRow struct {
	Position int
	DateRaw  string
	Opponent string

	// GameID is extracted from the row's match link; empty for rows
	// that do not link a game (price updates, decorations).
	GameID string

	// SectionCells carry per-section values in display order
	// (bleachers, lower tier, courtside, luxury boxes): attendance
	// counts for game rows, new prices for price-update rows.
	SectionCells [4]string

	TotalCell string

	// PriceCells optionally carry the prices the page attributes to a
	// game row itself. Used as a cross-check, never as ground truth.
	PriceCells [4]string
}

// ObservationKind distinguishes the two observation variants.
type ObservationKind int

const (
	PriceChangeObservation ObservationKind = iota
	GameObservation
)

func (k ObservationKind) String() string {
	if k == PriceChangeObservation {
		return "price_change"
	}
	return "game"
}

// Observation is a single classified fact from the arena table.
//
// For a price change, Prices holds the complete new price vector. For a
// game, GameID is set, Attendance may be partial and RecordedPrices may
// hold the prices the page itself attributes to the game.
type Observation struct {
	Kind     ObservationKind
	Position int
	Date     time.Time

	Prices domain.Vector

	GameID         string
	Attendance     domain.Vector
	RecordedPrices domain.Vector
}

// KnownGame is a game to be assigned to a pricing period. Games present
// in the scraped table carry their structural position; games recovered
// only from storage have Position == nil and fall back to date evidence.
type KnownGame struct {
	GameID         string
	Date           time.Time
	Position       *int
	Attendance     domain.Vector
	RecordedPrices domain.Vector
}
