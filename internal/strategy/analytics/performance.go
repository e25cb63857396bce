package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
)

// RegimeStats aggregates the trades placed under one regime direction.
type RegimeStats struct {
	Regime   domain.Direction
	Trades   int
	Wins     int
	WinRate  float64
	TotalPNL float64
}

// Summary holds aggregate statistics for a list of trades.
// NoData is set when there are no trades; every ratio is then left at zero.
type Summary struct {
	NoData bool

	TotalTrades  int
	Wins         int
	Losses       int
	WinRate      float64 // 0..1
	TotalPNL     float64
	AveragePNL   float64
	AverageWin   float64
	AverageLoss  float64 // <= 0
	ProfitFactor float64 // gross win / gross loss; 0 when nothing was lost

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int

	ByRegime []RegimeStats // Long first, then Short; regimes without trades are omitted
}

// Summarize computes statistics for trades in the order given.
// PNL is accumulated in decimal so totals do not depend on float summation order.
func Summarize(trades []domain.Trade) Summary {
	if len(trades) == 0 {
		return Summary{NoData: true, ByRegime: []RegimeStats{}}
	}

	s := Summary{TotalTrades: len(trades)}

	var total, grossWin, grossLoss decimal.Decimal
	var consecutiveWins, consecutiveLosses int
	regimeTotals := map[domain.Direction]decimal.Decimal{}
	regimeStats := map[domain.Direction]*RegimeStats{}

	for _, t := range trades {
		pnl := decimal.NewFromFloat(t.PNL)
		total = total.Add(pnl)

		if t.Win {
			s.Wins++
			grossWin = grossWin.Add(pnl)
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			s.Losses++
			grossLoss = grossLoss.Add(pnl)
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > s.MaxConsecutiveWins {
			s.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > s.MaxConsecutiveLosses {
			s.MaxConsecutiveLosses = consecutiveLosses
		}

		rs, ok := regimeStats[t.Regime]
		if !ok {
			rs = &RegimeStats{Regime: t.Regime}
			regimeStats[t.Regime] = rs
		}
		rs.Trades++
		if t.Win {
			rs.Wins++
		}
		regimeTotals[t.Regime] = regimeTotals[t.Regime].Add(pnl)
	}

	s.TotalPNL = total.InexactFloat64()
	s.AveragePNL = total.Div(decimal.NewFromInt(int64(s.TotalTrades))).InexactFloat64()
	s.WinRate = float64(s.Wins) / float64(s.TotalTrades)
	if s.Wins > 0 {
		s.AverageWin = grossWin.Div(decimal.NewFromInt(int64(s.Wins))).InexactFloat64()
	}
	if s.Losses > 0 {
		s.AverageLoss = grossLoss.Div(decimal.NewFromInt(int64(s.Losses))).InexactFloat64()
	}
	if grossLoss.IsNegative() {
		s.ProfitFactor = grossWin.Div(grossLoss.Neg()).InexactFloat64()
	}

	s.ByRegime = make([]RegimeStats, 0, 2)
	for _, r := range []domain.Direction{domain.Long, domain.Short} {
		rs, ok := regimeStats[r]
		if !ok {
			continue
		}
		rs.TotalPNL = regimeTotals[r].InexactFloat64()
		rs.WinRate = float64(rs.Wins) / float64(rs.Trades)
		s.ByRegime = append(s.ByRegime, *rs)
	}

	return s
}

// Comparison sets the raw (currency-unaware) run against the normalized one.
type Comparison struct {
	Raw        Summary
	Normalized Summary

	TradeDelta   int     // Normalized - Raw
	PNLDelta     float64 // Normalized - Raw
	WinRateDelta float64 // Normalized - Raw; zero unless both sides have trades
}

// Compare builds a Comparison from the two summaries.
func Compare(raw, normalized Summary) Comparison {
	c := Comparison{
		Raw:        raw,
		Normalized: normalized,
		TradeDelta: normalized.TotalTrades - raw.TotalTrades,
		PNLDelta: decimal.NewFromFloat(normalized.TotalPNL).
			Sub(decimal.NewFromFloat(raw.TotalPNL)).InexactFloat64(),
	}
	if !raw.NoData && !normalized.NoData {
		c.WinRateDelta = normalized.WinRate - raw.WinRate
	}
	return c
}
