package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/config"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/adapters/logger"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/ports"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/utils"
)

func TestTradesFileName(t *testing.T) {
	assert.Equal(t, "trades_Snapshots_v6_45.csv", tradesFileName("Snapshots_v6_45.csv"))
	assert.Equal(t, "trades_export.csv", tradesFileName("/tmp/in/export.txt"))
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	csv := "Symbol,ShiftPct\n" +
		"EURUSD,0\nEURUSD,100\n" +
		"GBPUSD,0\nGBPUSD,100\n" +
		"AUDUSD,0\nAUDUSD,100\n" +
		"NZDUSD,0\nNZDUSD,100\n" +
		"EURUSD,0\nEURUSD,100\n" +
		"GBPUSD,0\nGBPUSD,110\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snap.csv"), []byte(csv), 0644))

	cfg := &config.Config{SnapshotDir: dir, WindowSize: 5, ShiftThreshold: 100}
	appLogger := logger.NewStdLoggerTo(&bytes.Buffer{}, logger.LevelError)

	res, err := runFile(context.Background(), cfg, "snap.csv", appLogger)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Rows)
	assert.Equal(t, 6, res.Events)
	assert.Equal(t, 1, res.Comparison.Normalized.TotalTrades)
	assert.Equal(t, 110.0, res.Comparison.Normalized.TotalPNL)

	trades, err := utils.ReadTradesFromCSV(filepath.Join(dir, "trades_snap.csv"))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "GBPUSD", trades[0].Symbol)

	var buf bytes.Buffer
	writeResults(&buf, []*fileResult{res})
	assert.Contains(t, buf.String(), "snap.csv")
	assert.Contains(t, buf.String(), "+110.00")
}

func TestRunFile_MissingFileIsSkipped(t *testing.T) {
	var logs bytes.Buffer
	cfg := &config.Config{SnapshotDir: t.TempDir(), WindowSize: 5, ShiftThreshold: 100}

	res, err := runFile(context.Background(), cfg, "missing.csv", logger.NewStdLoggerTo(&logs, logger.LevelInfo))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Contains(t, logs.String(), "WARN")
	assert.Contains(t, logs.String(), "Snapshot file not found, skipping")
}

func TestRunFile_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("Symbol,ShiftPct\nEURUSD,Inf\n"), 0644))
	cfg := &config.Config{SnapshotDir: dir, WindowSize: 5, ShiftThreshold: 100}

	_, err := runFile(context.Background(), cfg, "bad.csv", logger.NewStdLoggerTo(&bytes.Buffer{}, logger.LevelError))
	assert.ErrorIs(t, err, ports.ErrMalformedRow)
}

func TestRunFile_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snap.csv"), []byte("Symbol,ShiftPct\n"+
		"A1A1A1,0\nA1A1A1,100\nB2B2B2,0\nB2B2B2,100\nC3C3C3,0\nC3C3C3,100\n"), 0644))
	cfg := &config.Config{SnapshotDir: dir, WindowSize: 1, ShiftThreshold: 100}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runFile(ctx, cfg, "snap.csv", logger.NewStdLoggerTo(&bytes.Buffer{}, logger.LevelError))
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}
