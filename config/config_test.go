package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/adapters/logger"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SNAPSHOT_DIR", "SNAPSHOT_FILES", "WINDOW_SIZE", "SHIFT_THRESHOLD", "SAMPLE_TRADES",
		"TRADES_OUTPUT", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.SnapshotDir)
	assert.Equal(t, DefaultSnapshotFiles, cfg.SnapshotFiles)
	assert.Equal(t, 5, cfg.WindowSize)
	assert.Equal(t, 100.0, cfg.ShiftThreshold)
	assert.Equal(t, 20, cfg.SampleTrades)
	assert.Empty(t, cfg.TradesOutput)
	assert.Empty(t, cfg.DBPath)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNAPSHOT_FILES", " a.csv, ,b.csv ")
	t.Setenv("WINDOW_SIZE", "7")
	t.Setenv("SHIFT_THRESHOLD", "50.5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"a.csv", "b.csv"}, cfg.SnapshotFiles)
	assert.Equal(t, 7, cfg.WindowSize)
	assert.Equal(t, 50.5, cfg.ShiftThreshold)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
}

func TestLoadConfig_CollectsErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("WINDOW_SIZE", "five")
	t.Setenv("SHIFT_THRESHOLD", "-1")
	t.Setenv("SAMPLE_TRADES", "-3")
	t.Setenv("LOG_FORMAT", "xml")

	cfg, err := LoadConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid WINDOW_SIZE")
	assert.Contains(t, err.Error(), "SHIFT_THRESHOLD must be positive")
	assert.Contains(t, err.Error(), "SAMPLE_TRADES cannot be negative")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestValidate(t *testing.T) {
	cfg := &Config{SnapshotDir: ".", SnapshotFiles: []string{"x.csv"}, WindowSize: 5, ShiftThreshold: 100, LogFormat: LogFormatText}
	assert.NoError(t, cfg.Validate())

	cfg.SnapshotFiles = nil
	assert.Error(t, cfg.Validate())
}
