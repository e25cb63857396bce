package backtesting

import (
	"context"
	"fmt"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/ports"
)

// DefaultWindowSize is the number of preceding finished events that vote on the regime.
const DefaultWindowSize = 5

// BacktestConfig holds configuration for a regime backtest
type BacktestConfig struct {
	WindowSize int
	Logger     ports.Logger // Optional; receives one Debug line per evaluated event
}

// BacktestResult holds the results of a regime backtest
type BacktestResult struct {
	Mode           domain.Mode
	WindowSize     int
	Events         int // Crossing events fed in
	Evaluated      int // Events with a full window behind them
	SkippedTie     int
	SkippedNoMatch int
	Decisions      []domain.RegimeDecision
	Trades         []domain.Trade
}

// Backtest walks the crossing events in order. For every event i with a full window behind
// it, the directions of events[i-N:i], normalized towards events[i].Symbol, vote on a regime.
// Ties are skipped. The most recent window event must agree with the regime, otherwise the
// event is skipped as well. Surviving events become trades in the regime direction.
func Backtest(ctx context.Context, events []domain.CrossingEvent, normalizer ports.Normalizer, config BacktestConfig) (*BacktestResult, error) {
	if normalizer == nil {
		return nil, fmt.Errorf("normalizer is required: %w", ports.ErrInvalidRequest)
	}
	if config.WindowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d: %w", config.WindowSize, ports.ErrInvalidRequest)
	}

	n := config.WindowSize
	result := &BacktestResult{
		Mode:       normalizer.Name(),
		WindowSize: n,
		Events:     len(events),
		Decisions:  make([]domain.RegimeDecision, 0),
		Trades:     make([]domain.Trade, 0),
	}

	for i := n; i < len(events); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest interrupted at event %d: %w", i, ports.ErrContextCanceled)
		}

		current := events[i]
		decision := decide(events[i-n:i], current, normalizer)
		decision.Index = i
		result.Evaluated++
		result.Decisions = append(result.Decisions, decision)

		switch decision.Skip {
		case domain.SkipTie:
			result.SkippedTie++
		case domain.SkipNoMatch:
			result.SkippedNoMatch++
		}
		if decision.Traded() {
			result.Trades = append(result.Trades, newTrade(current, decision))
		}

		if config.Logger != nil {
			config.Logger.Debug(ctx, "Regime evaluated", map[string]interface{}{
				"mode":   result.Mode,
				"index":  i,
				"symbol": current.Symbol,
				"long":   decision.LongCount,
				"short":  decision.ShortCount,
				"regime": decision.Regime,
				"skip":   decision.Skip,
			})
		}
	}

	return result, nil
}

// decide tallies the window and applies the confirmation rule.
func decide(window []domain.CrossingEvent, current domain.CrossingEvent, normalizer ports.Normalizer) domain.RegimeDecision {
	d := domain.RegimeDecision{Symbol: current.Symbol}

	for _, ev := range window {
		if normalizer.Normalize(ev.Direction, ev.Symbol, current.Symbol) == domain.Long {
			d.LongCount++
		} else {
			d.ShortCount++
		}
	}

	switch {
	case d.LongCount > d.ShortCount:
		d.Regime = domain.Long
	case d.ShortCount > d.LongCount:
		d.Regime = domain.Short
	default:
		d.Skip = domain.SkipTie
		return d
	}

	last := window[len(window)-1]
	d.Last = normalizer.Normalize(last.Direction, last.Symbol, current.Symbol)
	if d.Last != d.Regime {
		d.Skip = domain.SkipNoMatch
	}
	return d
}

func newTrade(ev domain.CrossingEvent, d domain.RegimeDecision) domain.Trade {
	pnl := calculatePNL(d.Regime, ev.ShiftPct)
	return domain.Trade{
		Index:          d.Index,
		Symbol:         ev.Symbol,
		Regime:         d.Regime,
		Actual:         ev.Direction,
		ShiftPct:       ev.ShiftPct,
		PNL:            pnl,
		Win:            pnl > 0,
		LongCount:      d.LongCount,
		ShortCount:     d.ShortCount,
		LastNormalized: d.Last,
	}
}

// calculatePNL returns the shift earned by betting in regime direction.
func calculatePNL(regime domain.Direction, shift float64) float64 {
	if regime == domain.Long {
		return shift
	}
	return -shift
}
