package reconstruct

import (
	"sort"
	"time"

	"arena-tracker/internal/domain"
)

// SectionCapacity is the reconciled capacity of one seating section at
// a point in time: either an exact known value, or an explicit
// lower/upper bound pair. Uncertain results are never collapsed to a
// point estimate.
type SectionCapacity struct {
	Section domain.Section `json:"section"`
	Known   bool           `json:"known"`
	Value   int            `json:"value,omitempty"`

	Lower    int  `json:"lower,omitempty"`
	Upper    int  `json:"upper,omitempty"`
	HasUpper bool `json:"has_upper,omitempty"`
}

// CapacityQuery describes one (team, game date) capacity question.
// Attendance is the queried game's own per-section attendance (may be
// partial); PriorMaxAttendance is the per-section maximum attendance
// over all earlier home games, the historical floor on capacity.
type CapacityQuery struct {
	At                 time.Time
	Attendance         domain.Vector
	PriorMaxAttendance domain.Vector
}

// ReconcileCapacity reconstructs, per section, the seating capacity
// that was true at the query date from bracketing arena snapshots and
// attendance-derived lower bounds:
//
//   - identical capacity in the nearest snapshot at-or-before and the
//     nearest strictly-after certifies the value as known;
//   - otherwise the upper bound is the capacity of the nearest later
//     snapshot (seats sold can never exceed what the arena held at
//     that later point), falling back to the earlier snapshot when
//     nothing later exists, and the lower bound is the highest
//     attendance ever seen in the section up to and including the
//     queried game;
//   - attendance equal to the upper bound means the game sold out and
//     the capacity is known exactly.
//
// Snapshots may be passed in any order. With no snapshot covering a
// section the result is uncertain with no upper bound.
func ReconcileCapacity(snapshots []domain.ArenaSnapshot, query CapacityQuery) []SectionCapacity {
	ordered := make([]domain.ArenaSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CapturedAt.Before(ordered[j].CapturedAt)
	})

	results := make([]SectionCapacity, 0, len(domain.Sections))
	for _, section := range domain.Sections {
		results = append(results, reconcileSection(ordered, section, query))
	}
	return results
}

func reconcileSection(ordered []domain.ArenaSnapshot, section domain.Section, query CapacityQuery) SectionCapacity {
	var before, after *int
	for _, snap := range ordered {
		value, ok := snap.Capacity[section]
		if !ok {
			continue
		}
		v := value
		if !snap.CapturedAt.After(query.At) {
			before = &v
		} else if after == nil {
			after = &v
		}
	}

	if before != nil && after != nil && *before == *after {
		return SectionCapacity{Section: section, Known: true, Value: *before}
	}

	result := SectionCapacity{Section: section}

	switch {
	case after != nil:
		result.Upper = *after
		result.HasUpper = true
	case before != nil:
		result.Upper = *before
		result.HasUpper = true
	}

	lower := query.PriorMaxAttendance[section]
	if att, ok := query.Attendance[section]; ok && att > lower {
		lower = att
	}
	result.Lower = lower

	if result.HasUpper {
		if att, ok := query.Attendance[section]; ok && att == result.Upper {
			// Sold out: the ceiling was reached, so it is the true value.
			return SectionCapacity{Section: section, Known: true, Value: result.Upper}
		}
	}

	return result
}
