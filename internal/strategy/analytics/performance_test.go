package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
)

func trade(regime domain.Direction, pnl float64) domain.Trade {
	return domain.Trade{Symbol: "EURUSD", Regime: regime, PNL: pnl, Win: pnl > 0}
}

func TestSummarize_NoTrades(t *testing.T) {
	s := Summarize(nil)

	assert.True(t, s.NoData)
	assert.Zero(t, s.TotalTrades)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.AveragePNL)
	assert.Empty(t, s.ByRegime)
}

func TestSummarize(t *testing.T) {
	trades := []domain.Trade{
		trade(domain.Long, 100),
		trade(domain.Long, 120),
		trade(domain.Short, -110),
		trade(domain.Short, 105),
		trade(domain.Long, -100),
		trade(domain.Long, -102),
		trade(domain.Short, 101),
	}

	s := Summarize(trades)

	assert.False(t, s.NoData)
	assert.Equal(t, 7, s.TotalTrades)
	assert.Equal(t, 4, s.Wins)
	assert.Equal(t, 3, s.Losses)
	assert.InDelta(t, 4.0/7.0, s.WinRate, 1e-9)
	assert.Equal(t, 114.0, s.TotalPNL)
	assert.InDelta(t, 114.0/7.0, s.AveragePNL, 1e-9)
	assert.Equal(t, 106.5, s.AverageWin)
	assert.Equal(t, -104.0, s.AverageLoss)
	assert.InDelta(t, 426.0/312.0, s.ProfitFactor, 1e-9)
	assert.Equal(t, 2, s.MaxConsecutiveWins)
	assert.Equal(t, 2, s.MaxConsecutiveLosses)

	require.Len(t, s.ByRegime, 2)
	assert.Equal(t, RegimeStats{Regime: domain.Long, Trades: 4, Wins: 2, WinRate: 0.5, TotalPNL: 18}, s.ByRegime[0])
	assert.Equal(t, domain.Short, s.ByRegime[1].Regime)
	assert.Equal(t, 3, s.ByRegime[1].Trades)
	assert.Equal(t, 2, s.ByRegime[1].Wins)
	assert.Equal(t, 96.0, s.ByRegime[1].TotalPNL)
}

func TestSummarize_OnlyWins(t *testing.T) {
	s := Summarize([]domain.Trade{trade(domain.Short, 100), trade(domain.Short, 110)})

	assert.Equal(t, 1.0, s.WinRate)
	assert.Zero(t, s.AverageLoss)
	assert.Zero(t, s.ProfitFactor)
	require.Len(t, s.ByRegime, 1)
	assert.Equal(t, domain.Short, s.ByRegime[0].Regime)
}

func TestSummarize_ExactTotals(t *testing.T) {
	trades := make([]domain.Trade, 0, 10)
	for i := 0; i < 10; i++ {
		trades = append(trades, trade(domain.Long, 100.1))
	}
	assert.Equal(t, 1001.0, Summarize(trades).TotalPNL)
}

func TestCompare(t *testing.T) {
	raw := Summarize([]domain.Trade{trade(domain.Long, 100), trade(domain.Long, -100)})
	norm := Summarize([]domain.Trade{trade(domain.Long, 100), trade(domain.Short, 120), trade(domain.Long, -101)})

	c := Compare(raw, norm)
	assert.Equal(t, 1, c.TradeDelta)
	assert.Equal(t, 119.0, c.PNLDelta)
	assert.InDelta(t, 2.0/3.0-0.5, c.WinRateDelta, 1e-9)

	empty := Compare(Summarize(nil), norm)
	assert.True(t, empty.Raw.NoData)
	assert.Zero(t, empty.WinRateDelta)
	assert.Equal(t, 3, empty.TradeDelta)
}
