package domain

// Trade is a simulated bet placed on a crossing event in the regime direction.
type Trade struct {
	ID             int64     // Unique identifier (set when persisted)
	Index          int       // Index of the event in the crossing event sequence
	Symbol         string    // Symbol of the event that was bet on
	Regime         Direction // Majority direction of the trailing window
	Actual         Direction // Direction the event actually finished in
	ShiftPct       float64   // ShiftPct of the event
	PNL            float64   // +ShiftPct for a long regime, -ShiftPct for a short one
	Win            bool      // PNL > 0
	LongCount      int       // Long votes in the window
	ShortCount     int       // Short votes in the window
	LastNormalized Direction // Most recent window event's direction, as seen from Symbol
}

// RegimeDecision is the outcome of evaluating one event index.
type RegimeDecision struct {
	Index      int
	Symbol     string
	LongCount  int
	ShortCount int
	Regime     Direction // Empty on a tie
	Last       Direction // Normalized direction of the most recent window event
	Skip       SkipReason
}

// Traded reports whether the decision produced a trade.
func (d RegimeDecision) Traded() bool {
	return d.Skip == SkipNone && d.Regime != ""
}
