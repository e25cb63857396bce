package domain

// Snapshot is one row of a snapshot export. Only Symbol and ShiftPct drive the backtest.
type Snapshot struct {
	Source   string  // File the row was read from
	Line     int     // 1-based line number inside Source (header is line 1)
	Symbol   string  // Six-character pair, e.g. "EURUSD"
	ShiftPct float64 // Cumulative percentage shift; |ShiftPct| >= 100 marks a finished move
}

// CrossingEvent is a finished snapshot: the first row where a symbol's |ShiftPct|
// reached the threshold after having been below it.
type CrossingEvent struct {
	Index     int       // Position of the source row in the combined row sequence
	Symbol    string    // Symbol that crossed
	ShiftPct  float64   // ShiftPct at the crossing row
	Direction Direction // Long if ShiftPct >= +threshold, Short otherwise
}
