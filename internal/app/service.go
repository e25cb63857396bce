package app

import (
	"context"
	"fmt"
	"io"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/config"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/currency"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/ports"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/report"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/analytics"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/backtesting"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/crossing"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/utils"
)

// Outcome is the result of one service run.
type Outcome struct {
	Files      []utils.FileLoad
	Rows       int
	Events     []domain.CrossingEvent
	Normalized *backtesting.BacktestResult
	Raw        *backtesting.BacktestResult
	Comparison analytics.Comparison
	RunIDs     map[domain.Mode]string // Populated when a repository is configured
}

// BacktestService runs the normalized regime backtest end to end.
type BacktestService struct {
	cfg    *config.Config
	logger ports.Logger
	repo   ports.RunRepository // Optional
	out    io.Writer
}

// NewBacktestService creates a new application service instance. repo may be nil.
func NewBacktestService(cfg *config.Config, logger ports.Logger, repo ports.RunRepository, out io.Writer) (*BacktestService, error) {
	if cfg == nil || logger == nil || out == nil {
		return nil, fmt.Errorf("missing required dependencies for BacktestService: %w", ports.ErrConfigurationError)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ports.ErrConfigurationError)
	}

	return &BacktestService{cfg: cfg, logger: logger, repo: repo, out: out}, nil
}

// Run loads the snapshot files, detects finished snapshots, simulates the normalized and the
// raw vote over them, optionally exports and persists the results, and writes the report.
func (s *BacktestService) Run(ctx context.Context) (*Outcome, error) {
	rows, files, err := utils.LoadSnapshotFiles(ctx, s.cfg.SnapshotDir, s.cfg.SnapshotFiles, s.logger)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load snapshot files")
		return nil, err
	}
	if len(rows) == 0 {
		s.logger.Warn(ctx, "No snapshot rows loaded", map[string]interface{}{"dir": s.cfg.SnapshotDir})
	}
	s.warnMalformedSymbols(ctx, rows)

	events := crossing.Detect(rows, s.cfg.ShiftThreshold)
	s.logger.Info(ctx, "Finished snapshots detected", map[string]interface{}{
		"rows":      len(rows),
		"events":    len(events),
		"threshold": s.cfg.ShiftThreshold,
	})

	btCfg := backtesting.BacktestConfig{WindowSize: s.cfg.WindowSize, Logger: s.logger}
	normalized, err := backtesting.Backtest(ctx, events, currency.Normalized{}, btCfg)
	if err != nil {
		return nil, fmt.Errorf("normalized backtest failed: %w", err)
	}
	raw, err := backtesting.Backtest(ctx, events, currency.Raw{}, btCfg)
	if err != nil {
		return nil, fmt.Errorf("raw backtest failed: %w", err)
	}

	outcome := &Outcome{
		Files:      files,
		Rows:       len(rows),
		Events:     events,
		Normalized: normalized,
		Raw:        raw,
		Comparison: analytics.Compare(analytics.Summarize(raw.Trades), analytics.Summarize(normalized.Trades)),
		RunIDs:     map[domain.Mode]string{},
	}
	s.logger.Info(ctx, "Backtest complete", map[string]interface{}{
		"normalizedTrades": len(normalized.Trades),
		"rawTrades":        len(raw.Trades),
		"normalizedPnL":    outcome.Comparison.Normalized.TotalPNL,
		"rawPnL":           outcome.Comparison.Raw.TotalPNL,
	})

	if s.cfg.TradesOutput != "" {
		if err := utils.WriteTradesToCSV(normalized.Trades, s.cfg.TradesOutput); err != nil {
			s.logger.Error(ctx, err, "Error writing trades CSV", map[string]interface{}{"path": s.cfg.TradesOutput})
			return nil, fmt.Errorf("failed to export trades: %w", err)
		}
		s.logger.Info(ctx, "Trades saved to", map[string]interface{}{"filename": s.cfg.TradesOutput})
	}

	if s.repo != nil {
		for _, res := range []*backtesting.BacktestResult{normalized, raw} {
			id, err := s.persist(ctx, outcome, res)
			if err != nil {
				return nil, err
			}
			outcome.RunIDs[res.Mode] = id
		}
	}

	err = report.Write(s.out, report.Report{
		Files:          files,
		Rows:           len(rows),
		Events:         len(events),
		WindowSize:     s.cfg.WindowSize,
		SkippedTie:     normalized.SkippedTie,
		SkippedNoMatch: normalized.SkippedNoMatch,
		Trades:         normalized.Trades,
		SampleSize:     s.cfg.SampleTrades,
		Comparison:     outcome.Comparison,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return outcome, nil
}

func (s *BacktestService) persist(ctx context.Context, o *Outcome, res *backtesting.BacktestResult) (string, error) {
	summary := o.Comparison.Normalized
	if res.Mode == domain.ModeRaw {
		summary = o.Comparison.Raw
	}

	run := &domain.Run{
		Mode:           res.Mode,
		WindowSize:     res.WindowSize,
		Threshold:      s.cfg.ShiftThreshold,
		Rows:           o.Rows,
		Events:         res.Events,
		SkippedTie:     res.SkippedTie,
		SkippedNoMatch: res.SkippedNoMatch,
		Trades:         len(res.Trades),
		Wins:           summary.Wins,
		TotalPNL:       summary.TotalPNL,
	}
	id, err := s.repo.SaveRun(ctx, run, o.Events, res.Trades)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to persist run", map[string]interface{}{"mode": res.Mode})
		return "", fmt.Errorf("failed to persist %s run: %w", res.Mode, err)
	}
	s.logger.Info(ctx, "Run persisted", map[string]interface{}{"mode": res.Mode, "runID": id})
	return id, nil
}

// warnMalformedSymbols reports symbols that are not six characters long once each.
// Their base/quote split is unreliable, so currency matching for them may be wrong.
func (s *BacktestService) warnMalformedSymbols(ctx context.Context, rows []domain.Snapshot) {
	seen := make(map[string]bool)
	for _, r := range rows {
		if seen[r.Symbol] || currency.IsWellFormed(r.Symbol) {
			continue
		}
		seen[r.Symbol] = true
		s.logger.Warn(ctx, "Symbol is not a six-character pair, currency matching may be unreliable", map[string]interface{}{
			"symbol": r.Symbol,
			"file":   r.Source,
			"line":   r.Line,
		})
	}
}
