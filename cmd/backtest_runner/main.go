package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/config"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/adapters/logger"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/currency"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/ports"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/analytics"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/backtesting"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/crossing"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/utils"
)

// fileResult is the outcome of backtesting a single snapshot file in isolation.
type fileResult struct {
	File       string
	Rows       int
	Events     int
	Comparison analytics.Comparison
	TradesFile string
}

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Backtest every snapshot file on its own
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]*fileResult)

	for _, name := range cfg.SnapshotFiles {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			res, err := runFile(ctx, cfg, name, appLogger)
			if err != nil {
				appLogger.Error(ctx, err, "Error backtesting snapshot file",
					map[string]interface{}{"file": name})
				return
			}
			if res == nil {
				return
			}

			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name)
	}

	wg.Wait()

	// 3. Print in configured file order
	ordered := make([]*fileResult, 0, len(results))
	for _, name := range cfg.SnapshotFiles {
		if res, ok := results[name]; ok {
			ordered = append(ordered, res)
		}
	}
	if len(ordered) == 0 {
		log.Println("No snapshot files could be backtested.")
		return
	}
	writeResults(os.Stdout, ordered)
}

// runFile loads one file, simulates both modes and exports the normalized trades next to it.
// A file that does not exist is skipped with a warning and yields a nil result.
func runFile(ctx context.Context, cfg *config.Config, name string, appLogger ports.Logger) (*fileResult, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.SnapshotDir, name)
	}
	rows, err := utils.ReadSnapshotsFromCSV(path)
	if errors.Is(err, os.ErrNotExist) {
		appLogger.Warn(ctx, "Snapshot file not found, skipping", map[string]interface{}{"path": path})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	events := crossing.Detect(rows, cfg.ShiftThreshold)
	btCfg := backtesting.BacktestConfig{WindowSize: cfg.WindowSize, Logger: appLogger}

	normalized, err := backtesting.Backtest(ctx, events, currency.Normalized{}, btCfg)
	if err != nil {
		return nil, err
	}
	raw, err := backtesting.Backtest(ctx, events, currency.Raw{}, btCfg)
	if err != nil {
		return nil, err
	}

	res := &fileResult{
		File:       name,
		Rows:       len(rows),
		Events:     len(events),
		Comparison: analytics.Compare(analytics.Summarize(raw.Trades), analytics.Summarize(normalized.Trades)),
		TradesFile: filepath.Join(cfg.SnapshotDir, tradesFileName(name)),
	}

	appLogger.Info(ctx, "Backtest result", map[string]interface{}{
		"file":      name,
		"events":    res.Events,
		"trades":    res.Comparison.Normalized.TotalTrades,
		"winRate":   res.Comparison.Normalized.WinRate * 100,
		"pnl":       res.Comparison.Normalized.TotalPNL,
		"rawTrades": res.Comparison.Raw.TotalTrades,
		"rawPnL":    res.Comparison.Raw.TotalPNL,
	})

	if err := utils.WriteTradesToCSV(normalized.Trades, res.TradesFile); err != nil {
		appLogger.Error(ctx, err, "Error writing trades CSV")
		return nil, err
	}
	appLogger.Info(ctx, "Trades saved to", map[string]interface{}{"filename": res.TradesFile})
	return res, nil
}

// tradesFileName maps Snapshots_v6_45.csv to trades_Snapshots_v6_45.csv.
func tradesFileName(snapshotFile string) string {
	base := filepath.Base(snapshotFile)
	return "trades_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".csv"
}

func writeResults(out io.Writer, results []*fileResult) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tRows\tEvents\tTrades\tWinRate\tPnL\tRawTrades\tRawPnL\tDelta\t")
	for _, r := range results {
		n, raw := r.Comparison.Normalized, r.Comparison.Raw
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\t%+.2f\t%d\t%+.2f\t%+.2f\t\n",
			r.File, r.Rows, r.Events, n.TotalTrades, n.WinRate*100, n.TotalPNL,
			raw.TotalTrades, raw.TotalPNL, r.Comparison.PNLDelta)
	}
	w.Flush()
}
