package reconstruct

import (
	"sort"
	"time"
)

// EvidenceKind tags how an assignment was decided. Structural evidence
// is certain; date fallback is inferred; ambiguous date evidence is
// surfaced, never guessed.
type EvidenceKind string

const (
	EvidenceStructural    EvidenceKind = "structural"
	EvidenceDateFallback  EvidenceKind = "date-fallback"
	EvidenceDateAmbiguous EvidenceKind = "date-fallback-ambiguous"
)

// Assignment maps one game to the period active when it was played.
// Ordinal is -1 when the evidence was ambiguous and no period was
// chosen.
type Assignment struct {
	GameID   string       `json:"game_id"`
	Ordinal  int          `json:"ordinal"`
	Evidence EvidenceKind `json:"evidence"`
	Conflict bool         `json:"conflict"`
}

// AssignResult is the full assignment for one team's reconstruction
// run.
type AssignResult struct {
	Assignments map[string]Assignment `json:"assignments"`
	Conflicts   []PriceConflict       `json:"conflicts"`
	Ambiguous   []string              `json:"ambiguous"`
}

// AssignGames maps every known game onto exactly one period.
//
// Games carrying a structural position are placed by position
// containment: the period ranges partition the position space, so the
// match is unique and deterministic even when a game and a price change
// share a calendar date. Only games recovered from storage alone fall
// back to date evidence: a strict bracket between the period's boundary
// change dates. A game dated exactly on a boundary change's date is
// ambiguous by construction and is flagged rather than guessed.
func AssignGames(periods []Period, games []KnownGame) *AssignResult {
	result := &AssignResult{
		Assignments: make(map[string]Assignment, len(games)),
	}

	for _, game := range games {
		var a Assignment
		if game.Position != nil {
			a = assignByPosition(periods, game)
		} else {
			a = assignByDate(periods, game)
		}

		if a.Evidence == EvidenceDateAmbiguous {
			result.Ambiguous = append(result.Ambiguous, game.GameID)
		} else if conflict := priceConflictAt(periods, a.Ordinal, game); conflict != nil {
			a.Conflict = true
			result.Conflicts = append(result.Conflicts, *conflict)
		}
		result.Assignments[game.GameID] = a
	}

	sort.Strings(result.Ambiguous)
	return result
}

func assignByPosition(periods []Period, game KnownGame) Assignment {
	pos := *game.Position
	for _, p := range periods {
		if p.Contains(pos) {
			return Assignment{GameID: game.GameID, Ordinal: p.Ordinal, Evidence: EvidenceStructural}
		}
	}
	// A position outside every range breaks the partition contract;
	// surface it as unassigned so validation rejects the run.
	return Assignment{GameID: game.GameID, Ordinal: -1, Evidence: EvidenceStructural}
}

func assignByDate(periods []Period, game KnownGame) Assignment {
	date := dateOnly(game.Date)

	for _, p := range periods {
		if sameDay(date, p.StartDate) || sameDay(date, p.EndDate) {
			return Assignment{GameID: game.GameID, Ordinal: -1, Evidence: EvidenceDateAmbiguous}
		}
	}

	matched := -1
	for _, p := range periods {
		if !p.StartDate.IsZero() && !date.After(dateOnly(p.StartDate)) {
			continue
		}
		if !p.Open && !p.EndDate.IsZero() && !date.Before(dateOnly(p.EndDate)) {
			continue
		}
		if matched >= 0 {
			// Non-monotonic boundary dates can bracket a date twice;
			// surface rather than pick a side.
			return Assignment{GameID: game.GameID, Ordinal: -1, Evidence: EvidenceDateAmbiguous}
		}
		matched = p.Ordinal
	}

	if matched < 0 {
		return Assignment{GameID: game.GameID, Ordinal: -1, Evidence: EvidenceDateAmbiguous}
	}
	return Assignment{GameID: game.GameID, Ordinal: matched, Evidence: EvidenceDateFallback}
}

func priceConflictAt(periods []Period, ordinal int, game KnownGame) *PriceConflict {
	if ordinal < 0 || ordinal >= len(periods) {
		return nil
	}
	return priceConflict(periods[ordinal], game)
}

// priceConflict compares the prices a game's own page entry recorded
// against the assigned period's prices. Only sections present in the
// recorded vector are compared; an unknown period price is never a
// conflict.
func priceConflict(period Period, game KnownGame) *PriceConflict {
	if game.RecordedPrices == nil || period.Prices == nil {
		return nil
	}
	for section, recorded := range game.RecordedPrices {
		expected, ok := period.Prices[section]
		if ok && expected != recorded {
			return &PriceConflict{
				GameID:   game.GameID,
				Ordinal:  period.Ordinal,
				Expected: period.Prices.Clone(),
				Recorded: game.RecordedPrices.Clone(),
			}
		}
	}
	return nil
}

// ValidateAssignment enforces the single-assignment invariant: every
// known game appears in the assignment exactly once, and every game
// with a structural position sits in exactly one period range.
// A violation is fatal for the team's write-back; ambiguous
// date-fallback games are not violations (they are surfaced and simply
// excluded from write-back).
func ValidateAssignment(teamID string, periods []Period, games []KnownGame, result *AssignResult) error {
	var missing, duplicated []string

	for _, game := range games {
		a, ok := result.Assignments[game.GameID]
		if !ok {
			missing = append(missing, game.GameID)
			continue
		}
		if a.Ordinal < 0 && a.Evidence != EvidenceDateAmbiguous {
			missing = append(missing, game.GameID)
			continue
		}
		if game.Position != nil {
			containing := 0
			for _, p := range periods {
				if p.Contains(*game.Position) {
					containing++
				}
			}
			if containing == 0 {
				missing = append(missing, game.GameID)
			} else if containing > 1 {
				duplicated = append(duplicated, game.GameID)
			}
		}
	}

	if len(missing) > 0 || len(duplicated) > 0 {
		sort.Strings(missing)
		sort.Strings(duplicated)
		return &IncompleteAssignmentError{TeamID: teamID, Missing: missing, Duplicated: duplicated}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(d, boundary time.Time) bool {
	if boundary.IsZero() {
		return false
	}
	return dateOnly(d).Equal(dateOnly(boundary))
}
