package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/config"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/adapters/logger"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/adapters/sqlite"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/app"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/ports"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code; deferred cleanup has finished by the time it returns.
func run(args []string, stdout io.Writer) int {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
		return 2
	}

	// Flags override the environment
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	dir := fs.String("dir", cfg.SnapshotDir, "directory containing the snapshot CSV files")
	files := fs.String("files", "", "comma separated snapshot files, in load order")
	window := fs.Int("window", cfg.WindowSize, "number of preceding finished snapshots that vote on the regime")
	tradesOut := fs.String("trades-out", cfg.TradesOutput, "optional CSV export of normalized trades")
	dbPath := fs.String("db", cfg.DBPath, "optional SQLite database recording each run")
	showRun := fs.String("show-run", "", "print a stored run from -db instead of running a backtest")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.SnapshotDir = *dir
	if *files != "" {
		cfg.SnapshotFiles = config.SplitList(*files)
	}
	cfg.WindowSize = *window
	cfg.TradesOutput = *tradesOut
	cfg.DBPath = *dbPath
	if err := cfg.Validate(); err != nil {
		log.Printf("FATAL: %v", err)
		return 2
	}

	// 2. Initialize Logger
	var appLogger ports.Logger
	if cfg.LogFormat == config.LogFormatJSON {
		appLogger = logger.NewZeroLogger(cfg.LogLevel)
	} else {
		appLogger = logger.NewStdLogger(cfg.LogLevel)
	}
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{
		"level":  cfg.LogLevel.String(),
		"format": cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Repository (optional)
	var repo *sqlite.Repository
	if cfg.DBPath != "" {
		repo, err = sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
			return 1
		}
		defer func() {
			if err := repo.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing database repository")
			}
		}()
		appLogger.Info(ctx, "Database repository initialized", map[string]interface{}{"path": cfg.DBPath})
	}

	if *showRun != "" {
		if repo == nil {
			appLogger.Error(ctx, ports.ErrConfigurationError, "-show-run requires -db")
			return 2
		}
		if err := printRun(ctx, stdout, repo, *showRun); err != nil {
			appLogger.Error(ctx, err, "Failed to show run", map[string]interface{}{"runID": *showRun})
			return 1
		}
		return 0
	}

	// 4. Initialize Application Service
	var runRepo ports.RunRepository
	if repo != nil {
		runRepo = repo
	}
	service, err := app.NewBacktestService(cfg, appLogger, runRepo, stdout)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize backtest service")
		return 1
	}

	// 5. Run
	outcome, err := service.Run(ctx)
	if err != nil {
		appLogger.Error(ctx, err, "Backtest failed")
		return 1
	}

	fields := map[string]interface{}{"events": len(outcome.Events)}
	for mode, id := range outcome.RunIDs {
		fields[string(mode)+"RunID"] = id
	}
	appLogger.Info(ctx, "Application finished gracefully.", fields)
	return 0
}

// printRun writes a stored run and its trades.
func printRun(ctx context.Context, w io.Writer, repo ports.RunRepository, id string) error {
	run, err := repo.FindRun(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s: %w", id, ports.ErrNotFound)
	}
	events, err := repo.FindEventsByRun(ctx, id)
	if err != nil {
		return err
	}
	trades, err := repo.FindTradesByRun(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run %s (%s) recorded %s\n", run.ID, run.Mode, run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Window: %d | Threshold: %.0f | Rows: %d | Finished snapshots: %d\n",
		run.WindowSize, run.Threshold, run.Rows, len(events))
	fmt.Fprintf(w, "Skipped (tie): %d | Skipped (last didn't match): %d\n", run.SkippedTie, run.SkippedNoMatch)
	fmt.Fprintf(w, "Trades: %d | Wins: %d | Total PnL: %+.2f%%\n", run.Trades, run.Wins, run.TotalPNL)
	for _, t := range trades {
		fmt.Fprintln(w, report.FormatTrade(t))
	}
	return nil
}
