package domain

import (
	"time"
)

// Section identifies one of the arena's four seating tiers.
type Section string

const (
	Bleachers   Section = "bleachers"
	LowerTier   Section = "lower_tier"
	Courtside   Section = "courtside"
	LuxuryBoxes Section = "luxury_boxes"
)

// Sections lists all seating sections in display order.
var Sections = []Section{Bleachers, LowerTier, Courtside, LuxuryBoxes}

// Vector holds one integer value per seating section. A nil map means
// "unknown"; a missing key means the value is not known for that section.
// Used for prices, attendances and capacities alike.
type Vector map[Section]int

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	for s, n := range v {
		out[s] = n
	}
	return out
}

// Complete reports whether every section has a value.
func (v Vector) Complete() bool {
	if v == nil {
		return false
	}
	for _, s := range Sections {
		if _, ok := v[s]; !ok {
			return false
		}
	}
	return true
}

// Equal reports whether both vectors hold identical values for identical
// sections. Two nil vectors are equal.
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for s, n := range v {
		if m, ok := other[s]; !ok || m != n {
			return false
		}
	}
	return true
}

// Total sums the values of all present sections.
func (v Vector) Total() int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}

type Team struct {
	TeamID    string
	Name      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Game struct {
	GameID       string
	HomeTeamID   string
	AwayTeamID   string
	Date         time.Time
	GameType     string
	Season       int
	NeutralArena bool
	ScoreHome    int
	ScoreAway    int

	// Attendance may be partial; nil means no attendance recorded.
	Attendance Vector

	// Prices reconstructed (or observed) for this game; nil until a
	// reconstruction run has written them back.
	Prices Vector

	TicketRevenue float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PriceSnapshot is a direct observation of a team's ticket prices at a
// specific instant, taken from the live arena view rather than the
// historical table.
type PriceSnapshot struct {
	ID         string
	TeamID     string
	Prices     Vector
	CapturedAt time.Time
}

// ArenaSnapshot captures per-section seating capacities at a specific
// instant. Two snapshots with identical capacities bracketing a date
// certify the capacity as unchanged through that interval.
type ArenaSnapshot struct {
	ID                  string
	TeamID              string
	ArenaName           string
	Capacity            Vector
	ExpansionInProgress bool
	CapturedAt          time.Time
}

// TotalCapacity sums the per-section capacities.
func (a ArenaSnapshot) TotalCapacity() int {
	return a.Capacity.Total()
}

// SameCapacities reports whether another snapshot describes the same
// arena configuration (capacities and expansion state).
func (a ArenaSnapshot) SameCapacities(other ArenaSnapshot) bool {
	return a.Capacity.Equal(other.Capacity) && a.ExpansionInProgress == other.ExpansionInProgress
}
