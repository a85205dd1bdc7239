package reconstruct

import (
	"fmt"
	"strings"

	"arena-tracker/internal/domain"
)

// UnparsedRow records a table row that matched neither observation
// shape. Non-fatal: the row is dropped and reported.
type UnparsedRow struct {
	Position int    `json:"position"`
	Reason   string `json:"reason"`
}

// PriceConflict reports a game whose own recorded prices disagree with
// the prices of the period it was assigned to. Neither side is
// auto-corrected.
type PriceConflict struct {
	GameID   string        `json:"game_id"`
	Ordinal  int           `json:"ordinal"`
	Expected domain.Vector `json:"expected"`
	Recorded domain.Vector `json:"recorded"`
}

func (c PriceConflict) String() string {
	return fmt.Sprintf("game %s in period %d: period prices %v, page recorded %v",
		c.GameID, c.Ordinal, c.Expected, c.Recorded)
}

// IncompleteAssignmentError reports a violation of the single-assignment
// invariant: one or more known games received zero or multiple period
// assignments. Fatal for the affected team's write-back.
type IncompleteAssignmentError struct {
	TeamID     string
	Missing    []string
	Duplicated []string
}

func (e *IncompleteAssignmentError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("unassigned games: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, fmt.Sprintf("multiply assigned games: %s", strings.Join(e.Duplicated, ", ")))
	}
	return fmt.Sprintf("incomplete assignment for team %s: %s", e.TeamID, strings.Join(parts, "; "))
}
