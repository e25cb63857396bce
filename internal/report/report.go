// Package report renders a backtest outcome as the human-readable text printed by the CLI.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/analytics"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/utils"
)

const ruleWidth = 60

// Report is everything the text report shows.
type Report struct {
	Files          []utils.FileLoad
	Rows           int
	Events         int
	WindowSize     int
	SkippedTie     int
	SkippedNoMatch int
	Trades         []domain.Trade // Normalized trades, in event order
	SampleSize     int            // How many trades to list individually
	Comparison     analytics.Comparison
}

// Write renders r to w.
func Write(w io.Writer, r Report) error {
	p := &printer{w: w}
	if r.SampleSize < 0 {
		r.SampleSize = 0
	}

	for _, f := range r.Files {
		if f.Missing {
			p.printf("Skipped %s: not found\n", f.Name)
			continue
		}
		p.printf("Loaded %s: %d rows\n", f.Name, f.Rows)
	}
	p.printf("\nTotal rows: %d\n", r.Rows)
	p.printf("\nTotal finished snapshots: %d\n", r.Events)
	if r.Events <= r.WindowSize {
		p.printf("Not enough finished snapshots to fill a window of %d\n", r.WindowSize)
	}

	p.printf("\nSkipped (tie): %d\n", r.SkippedTie)
	p.printf("Skipped (last didn't match): %d\n", r.SkippedNoMatch)
	p.printf("Total trades: %d\n", len(r.Trades))

	norm := r.Comparison.Normalized
	p.section("ADAPTIVE STRATEGY WITH CURRENCY NORMALIZATION")
	if norm.NoData {
		p.printf("No trades.\n")
	} else {
		p.printf("Total trades: %d\n", norm.TotalTrades)
		p.printf("Wins: %d (%.1f%%)\n", norm.Wins, percent(norm.Wins, norm.TotalTrades))
		p.printf("Losses: %d (%.1f%%)\n", norm.Losses, percent(norm.Losses, norm.TotalTrades))
		p.printf("Total PnL: %+.2f%%\n", norm.TotalPNL)
		p.printf("Avg PnL per trade: %+.2f%%\n", norm.AveragePNL)
		p.printf("Avg win: %+.2f%% | Avg loss: %+.2f%% | Profit factor: %.2f\n",
			norm.AverageWin, norm.AverageLoss, norm.ProfitFactor)
		p.printf("Max consecutive wins: %d | Max consecutive losses: %d\n",
			norm.MaxConsecutiveWins, norm.MaxConsecutiveLosses)

		p.section("BY REGIME")
		for _, rs := range norm.ByRegime {
			p.printf("%s: %d trades, %d wins (%.1f%%), PnL: %+.2f%%\n",
				rs.Regime, rs.Trades, rs.Wins, percent(rs.Wins, rs.Trades), rs.TotalPNL)
		}

		sample := r.Trades
		if r.SampleSize < len(sample) {
			sample = sample[:r.SampleSize]
		}
		if len(sample) > 0 {
			p.section(fmt.Sprintf("SAMPLE TRADES (first %d)", r.SampleSize))
			for _, t := range sample {
				p.printf("%s\n", FormatTrade(t))
			}
		}
	}

	p.section("COMPARISON: NON-NORMALIZED VS NORMALIZED")
	if p.err == nil {
		p.err = writeComparison(w, r.Comparison)
	}

	return p.err
}

// FormatTrade renders one trade as a single report line.
func FormatTrade(t domain.Trade) string {
	result := "LOSS"
	if t.Win {
		result = "WIN"
	}
	return fmt.Sprintf("Game %3d: %-6s | Regime=%-5s (L:%d/S:%d) | Actual=%+7.2f%% | PnL=%+7.2f%% [%s]",
		t.Index, t.Symbol, t.Regime, t.LongCount, t.ShortCount, t.ShiftPct, t.PNL, result)
}

func writeComparison(w io.Writer, c analytics.Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Mode\tTrades\tWins\tWinRate\tPnL\t")
	for _, row := range []struct {
		name string
		s    analytics.Summary
	}{
		{"Non-Normalized", c.Raw},
		{"Normalized", c.Normalized},
	} {
		if row.s.NoData {
			fmt.Fprintf(tw, "%s\t0\t0\tn/a\t%+.2f%%\t\n", row.name, 0.0)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\t%+.2f%%\t\n",
			row.name, row.s.TotalTrades, row.s.Wins, row.s.WinRate*100, row.s.TotalPNL)
	}
	fmt.Fprintf(tw, "Delta\t%+d\t\t%s\t%+.2f%%\t\n", c.TradeDelta, winRateDelta(c), c.PNLDelta)
	return tw.Flush()
}

func winRateDelta(c analytics.Comparison) string {
	if c.Raw.NoData || c.Normalized.NoData {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", c.WinRateDelta*100)
}

// percent returns part/total*100, or 0 when total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

// printer keeps the first write error so callers can print freely.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	rule := strings.Repeat("=", ruleWidth)
	p.printf("\n%s\n%s\n%s\n", rule, title, rule)
}
