package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/ports"
)

// Repository implements ports.RunRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the database at cfg.DBPath and ensures the schema exists.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository: %w", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtests.db"
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
			cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
			return nil, err
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection also keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, logger: cfg.Logger, now: time.Now}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite run repository ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		window_size INTEGER NOT NULL,
		threshold REAL NOT NULL,
		rows_scanned INTEGER NOT NULL,
		events INTEGER NOT NULL,
		skipped_tie INTEGER NOT NULL,
		skipped_no_match INTEGER NOT NULL,
		trades INTEGER NOT NULL,
		wins INTEGER NOT NULL,
		total_pnl REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS crossing_events (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		row_index INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		shift_pct REAL NOT NULL,
		direction TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		event_index INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		regime TEXT NOT NULL,
		actual TEXT NOT NULL,
		shift_pct REAL NOT NULL,
		pnl REAL NOT NULL,
		win INTEGER NOT NULL,
		long_count INTEGER NOT NULL,
		short_count INTEGER NOT NULL,
		last_normalized TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_run_event ON trades (run_id, event_index);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveRun stores the run with its events and trades in a single transaction.
// The run is assigned a fresh UUID; run.ID and run.CreatedAt are updated in place.
func (r *Repository) SaveRun(ctx context.Context, run *domain.Run, events []domain.CrossingEvent, trades []domain.Trade) (string, error) {
	if run == nil {
		return "", fmt.Errorf("run is required: %w", ports.ErrInvalidRequest)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %v: %w", err, ports.ErrDBConnection)
	}
	defer tx.Rollback() // no-op after Commit

	run.ID = uuid.NewString()
	run.CreatedAt = r.now().UTC()

	const insertRun = `
	INSERT INTO runs (id, mode, window_size, threshold, rows_scanned, events, skipped_tie, skipped_no_match,
	                  trades, wins, total_pnl, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertRun,
		run.ID, run.Mode, run.WindowSize, run.Threshold, run.Rows, run.Events, run.SkippedTie, run.SkippedNoMatch,
		run.Trades, run.Wins, run.TotalPNL, run.CreatedAt); err != nil {
		return "", fmt.Errorf("failed to insert run (%v): %w", err, ports.ErrInsertFailed)
	}

	evStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO crossing_events (run_id, seq, row_index, symbol, shift_pct, direction) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare event insert: %v: %w", err, ports.ErrInsertFailed)
	}
	defer evStmt.Close()
	for seq, ev := range events {
		if _, err := evStmt.ExecContext(ctx, run.ID, seq, ev.Index, ev.Symbol, ev.ShiftPct, ev.Direction); err != nil {
			return "", fmt.Errorf("failed to insert event %d (%v): %w", seq, err, ports.ErrInsertFailed)
		}
	}

	trStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO trades (run_id, event_index, symbol, regime, actual, shift_pct, pnl, win, long_count, short_count, last_normalized)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare trade insert: %v: %w", err, ports.ErrInsertFailed)
	}
	defer trStmt.Close()
	for _, t := range trades {
		if _, err := trStmt.ExecContext(ctx, run.ID, t.Index, t.Symbol, t.Regime, t.Actual, t.ShiftPct, t.PNL,
			t.Win, t.LongCount, t.ShortCount, t.LastNormalized); err != nil {
			return "", fmt.Errorf("failed to insert trade at event %d (%v): %w", t.Index, err, ports.ErrInsertFailed)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run (%v): %w", err, ports.ErrInsertFailed)
	}
	r.logger.Debug(ctx, "Run saved", map[string]interface{}{
		"runID": run.ID, "mode": run.Mode, "events": len(events), "trades": len(trades),
	})
	return run.ID, nil
}

// FindRun retrieves a run by ID. Returns nil, nil if not found.
func (r *Repository) FindRun(ctx context.Context, id string) (*domain.Run, error) {
	const query = `
	SELECT id, mode, window_size, threshold, rows_scanned, events, skipped_tie, skipped_no_match,
	       trades, wins, total_pnl, created_at
	FROM runs WHERE id = ?`

	run := &domain.Run{}
	var mode string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &mode, &run.WindowSize, &run.Threshold, &run.Rows, &run.Events, &run.SkippedTie,
		&run.SkippedNoMatch, &run.Trades, &run.Wins, &run.TotalPNL, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Run not found", map[string]interface{}{"runID": id})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query run %s (%v): %w", id, err, ports.ErrQueryFailed)
	}
	run.Mode = domain.Mode(mode)
	return run, nil
}

// FindTradesByRun retrieves the trades of a run ordered by event index.
func (r *Repository) FindTradesByRun(ctx context.Context, runID string) ([]domain.Trade, error) {
	const query = `
	SELECT id, event_index, symbol, regime, actual, shift_pct, pnl, win, long_count, short_count, last_normalized
	FROM trades WHERE run_id = ? ORDER BY event_index`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for run %s (%v): %w", runID, err, ports.ErrQueryFailed)
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0)
	for rows.Next() {
		var t domain.Trade
		var regime, actual, last string
		if err := rows.Scan(&t.ID, &t.Index, &t.Symbol, &regime, &actual, &t.ShiftPct, &t.PNL, &t.Win,
			&t.LongCount, &t.ShortCount, &last); err != nil {
			return nil, fmt.Errorf("failed to scan trade (%v): %w", err, ports.ErrQueryFailed)
		}
		t.Regime = domain.Direction(regime)
		t.Actual = domain.Direction(actual)
		t.LastNormalized = domain.Direction(last)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows (%v): %w", err, ports.ErrQueryFailed)
	}
	return trades, nil
}

// FindEventsByRun retrieves the crossing events of a run in detection order.
func (r *Repository) FindEventsByRun(ctx context.Context, runID string) ([]domain.CrossingEvent, error) {
	const query = `
	SELECT row_index, symbol, shift_pct, direction
	FROM crossing_events WHERE run_id = ? ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for run %s (%v): %w", runID, err, ports.ErrQueryFailed)
	}
	defer rows.Close()

	events := make([]domain.CrossingEvent, 0)
	for rows.Next() {
		var ev domain.CrossingEvent
		var dir string
		if err := rows.Scan(&ev.Index, &ev.Symbol, &ev.ShiftPct, &dir); err != nil {
			return nil, fmt.Errorf("failed to scan event (%v): %w", err, ports.ErrQueryFailed)
		}
		ev.Direction = domain.Direction(dir)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows (%v): %w", err, ports.ErrQueryFailed)
	}
	return events, nil
}
