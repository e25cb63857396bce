package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/analytics"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/utils"
)

func TestWrite_WithTrades(t *testing.T) {
	trades := []domain.Trade{
		{Index: 5, Symbol: "EURUSD", Regime: domain.Long, Actual: domain.Long, ShiftPct: 101.5, PNL: 101.5, Win: true, LongCount: 4, ShortCount: 1},
		{Index: 8, Symbol: "USDCHF", Regime: domain.Short, Actual: domain.Long, ShiftPct: 100, PNL: -100, LongCount: 1, ShortCount: 4},
	}
	raw := []domain.Trade{{Index: 5, Regime: domain.Long, PNL: -100}}

	var buf bytes.Buffer
	err := Write(&buf, Report{
		Files:          []utils.FileLoad{{Name: "a.csv", Rows: 30}, {Name: "b.csv", Missing: true}},
		Rows:           30,
		Events:         9,
		WindowSize:     5,
		SkippedTie:     0,
		SkippedNoMatch: 2,
		Trades:         trades,
		SampleSize:     1,
		Comparison:     analytics.Compare(analytics.Summarize(raw), analytics.Summarize(trades)),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Loaded a.csv: 30 rows")
	assert.Contains(t, out, "Skipped b.csv: not found")
	assert.Contains(t, out, "Total finished snapshots: 9")
	assert.Contains(t, out, "Skipped (last didn't match): 2")
	assert.Contains(t, out, "Wins: 1 (50.0%)")
	assert.Contains(t, out, "Total PnL: +1.50%")
	assert.Contains(t, out, "LONG: 1 trades, 1 wins (100.0%), PnL: +101.50%")
	assert.Contains(t, out, "SHORT: 1 trades, 0 wins (0.0%), PnL: -100.00%")
	assert.Contains(t, out, "SAMPLE TRADES (first 1)")
	assert.Contains(t, out, FormatTrade(trades[0]))
	assert.NotContains(t, out, FormatTrade(trades[1]))
	assert.Contains(t, out, "COMPARISON: NON-NORMALIZED VS NORMALIZED")
	assert.Regexp(t, `Non-Normalized\s+1\s+0\s+0\.0%\s+-100\.00%`, out)
	assert.Regexp(t, `Normalized\s+2\s+1\s+50\.0%\s+\+1\.50%`, out)
	assert.Regexp(t, `Delta\s+\+1\s+\+50\.0%\s+\+101\.50%`, out)
}

func TestWrite_NegativeSampleSize(t *testing.T) {
	trades := []domain.Trade{
		{Index: 5, Symbol: "EURUSD", Regime: domain.Long, Actual: domain.Long, ShiftPct: 100, PNL: 100, Win: true, LongCount: 5},
	}

	var buf bytes.Buffer
	require.NotPanics(t, func() {
		err := Write(&buf, Report{
			Events:     6,
			WindowSize: 5,
			Trades:     trades,
			SampleSize: -3,
			Comparison: analytics.Compare(analytics.Summarize(nil), analytics.Summarize(trades)),
		})
		require.NoError(t, err)
	})

	out := buf.String()
	assert.Contains(t, out, "Total trades: 1")
	assert.NotContains(t, out, "SAMPLE TRADES")
	assert.NotContains(t, out, FormatTrade(trades[0]))
}

func TestWrite_NoTrades(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Report{
		Events:     2,
		WindowSize: 5,
		Comparison: analytics.Compare(analytics.Summarize(nil), analytics.Summarize(nil)),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Not enough finished snapshots to fill a window of 5")
	assert.Contains(t, out, "No trades.")
	assert.NotContains(t, out, "BY REGIME")
	assert.Regexp(t, `Normalized\s+0\s+0\s+n/a`, out)
	assert.NotContains(t, out, "NaN")
}

func TestFormatTrade(t *testing.T) {
	line := FormatTrade(domain.Trade{Index: 42, Symbol: "GBPUSD", Regime: domain.Short, ShiftPct: -104.25, PNL: 104.25, Win: true, LongCount: 2, ShortCount: 3})
	assert.Equal(t, "Game  42: GBPUSD | Regime=SHORT (L:2/S:3) | Actual=-104.25% | PnL=+104.25% [WIN]", line)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("closed") }

func TestWrite_PropagatesWriteError(t *testing.T) {
	err := Write(failingWriter{}, Report{Comparison: analytics.Compare(analytics.Summarize(nil), analytics.Summarize(nil))})
	assert.Error(t, err)
}
