package domain

import "time"

// Run summarizes one simulation pass for persistence.
type Run struct {
	ID             string    // UUID assigned when the run is saved
	Mode           Mode      // normalized or raw
	WindowSize     int       // Trailing window N
	Threshold      float64   // |ShiftPct| threshold used by the crossing detector
	Rows           int       // Snapshot rows scanned
	Events         int       // Crossing events detected
	SkippedTie     int       // Evaluations skipped on an exact tie
	SkippedNoMatch int       // Evaluations skipped because the last event disagreed
	Trades         int       // Trades emitted
	Wins           int       // Trades with PNL > 0
	TotalPNL       float64   // Sum of trade PNL
	CreatedAt      time.Time // When the run was recorded
}
