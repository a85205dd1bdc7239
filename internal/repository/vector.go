package repository

import (
	"database/sql"

	"arena-tracker/internal/domain"
)

// Per-section column groups always bind in the fixed order bleachers,
// lower_tier, courtside, luxury_boxes, matching domain.Sections.

func vectorToNulls(v domain.Vector) [4]sql.NullInt64 {
	var out [4]sql.NullInt64
	for i, section := range domain.Sections {
		if n, ok := v[section]; ok {
			out[i] = sql.NullInt64{Int64: int64(n), Valid: true}
		}
	}
	return out
}

func nullsToVector(cols [4]sql.NullInt64) domain.Vector {
	var v domain.Vector
	for i, section := range domain.Sections {
		if cols[i].Valid {
			if v == nil {
				v = make(domain.Vector, len(domain.Sections))
			}
			v[section] = int(cols[i].Int64)
		}
	}
	return v
}
