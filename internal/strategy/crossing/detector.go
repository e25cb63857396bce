// Package crossing finds finished snapshots: rows where a symbol's cumulative shift
// first reaches the threshold after having been below it.
package crossing

import (
	"math"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
)

// DefaultThreshold is the |ShiftPct| at which a move counts as finished.
const DefaultThreshold = 100.0

// Detect scans rows in order and emits a CrossingEvent each time a symbol moves from
// |prev| < threshold to |shift| >= threshold between two of its consecutive rows.
// The first row of a symbol never emits because there is nothing to compare it with.
// A threshold <= 0 falls back to DefaultThreshold.
func Detect(rows []domain.Snapshot, threshold float64) []domain.CrossingEvent {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	events := make([]domain.CrossingEvent, 0)
	last := make(map[string]float64)

	for i, row := range rows {
		if prev, seen := last[row.Symbol]; seen {
			if math.Abs(prev) < threshold && math.Abs(row.ShiftPct) >= threshold {
				events = append(events, domain.CrossingEvent{
					Index:     i,
					Symbol:    row.Symbol,
					ShiftPct:  row.ShiftPct,
					Direction: directionOf(row.ShiftPct, threshold),
				})
			}
		}
		last[row.Symbol] = row.ShiftPct
	}
	return events
}

func directionOf(shift, threshold float64) domain.Direction {
	if shift >= threshold {
		return domain.Long
	}
	return domain.Short
}
