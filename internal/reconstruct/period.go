package reconstruct

import (
	"fmt"
	"time"

	"arena-tracker/internal/domain"
)

// Period is a maximal span of the timeline during which the ticket
// price vector was constant.
//
// Bounds are structural-position ranges: a period covers every position
// pos with End < pos <= Start. Positions shrink toward the present, so
// Start is the oldest covered position and End is exclusive on the
// recent side. The most recent period is open toward now (End == -1).
type Period struct {
	Ordinal int  `json:"ordinal"`
	Start   int  `json:"start"`
	End     int  `json:"end"`
	Open    bool `json:"open"`

	// Prices is nil for the earliest stretch of a team with no price
	// change observed before it.
	Prices domain.Vector `json:"prices,omitempty"`

	// StartDate is the calendar date of the price change opening this
	// period (zero for an initial period with no opening change).
	// EndDate is the date of the change closing it (zero while open).
	// Used only for date-fallback bracketing of storage-only games.
	StartDate time.Time `json:"start_date,omitempty"`
	EndDate   time.Time `json:"end_date,omitempty"`
}

// Contains reports whether the structural position falls inside this
// period's range.
func (p Period) Contains(pos int) bool {
	return pos <= p.Start && pos > p.End
}

// BuildPeriods folds the chronological observation stream (largest
// position first, i.e. oldest to newest) into an immutable period list
// that partitions [oldest observed position, now):
//
//   - a price change closes the current period just before its own
//     position and opens a new one carrying its prices;
//   - games never open or close periods;
//   - the final period stays open toward the present;
//   - with no price changes at all the result is a single open period
//     with unknown prices.
//
// The input must be sorted by position ascending (the classifier's
// output order). The returned ordinals increase with time, 0 = earliest.
func BuildPeriods(observations []Observation) []Period {
	maxPos := 0
	if n := len(observations); n > 0 {
		maxPos = observations[n-1].Position
	}

	periods := make([]Period, 0, 4)
	current := Period{Start: maxPos, End: -1}

	for i := len(observations) - 1; i >= 0; i-- {
		obs := observations[i]
		if obs.Kind != PriceChangeObservation {
			continue
		}

		closed := current
		closed.End = obs.Position
		closed.Open = false
		closed.EndDate = obs.Date
		if closed.Start > closed.End {
			periods = append(periods, closed)
		}

		current = Period{
			Start:     obs.Position,
			End:       -1,
			Prices:    obs.Prices.Clone(),
			StartDate: obs.Date,
		}
	}

	current.Open = true
	periods = append(periods, current)

	for i := range periods {
		periods[i].Ordinal = i
	}
	return periods
}

// CheckPartition verifies that the periods strictly tile
// [0, oldest position] with ordinals increasing with time: the open
// period last, no gaps and no overlaps between neighbours.
func CheckPartition(periods []Period) error {
	if len(periods) == 0 {
		return fmt.Errorf("no periods")
	}
	last := periods[len(periods)-1]
	if !last.Open || last.End != -1 {
		return fmt.Errorf("final period (ordinal %d) is not open toward now", last.Ordinal)
	}
	for i := 0; i < len(periods); i++ {
		if periods[i].Ordinal != i {
			return fmt.Errorf("ordinal %d at index %d", periods[i].Ordinal, i)
		}
		if i < len(periods)-1 {
			if periods[i].Open {
				return fmt.Errorf("period %d is open but not the most recent", i)
			}
			if periods[i+1].Start != periods[i].End {
				return fmt.Errorf("periods %d and %d do not meet: end %d vs start %d",
					i, i+1, periods[i].End, periods[i+1].Start)
			}
		}
		if periods[i].Start <= periods[i].End {
			return fmt.Errorf("period %d has empty range (%d, %d]", i, periods[i].End, periods[i].Start)
		}
	}
	return nil
}
