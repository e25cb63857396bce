package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/adapters/logger"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/backtesting"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/crossing"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DefaultSnapshotFiles are the snapshot exports read when SNAPSHOT_FILES is unset.
var DefaultSnapshotFiles = []string{"Snapshots_v6_45.csv", "Snapshots_v6_47.csv", "Snapshots_vXIII.csv"}

// Config holds all application configuration.
type Config struct {
	// Input
	SnapshotDir   string   // Directory relative snapshot file names are resolved against
	SnapshotFiles []string // Files in the order their rows are concatenated

	// Strategy Parameters
	WindowSize     int     // Preceding finished events that vote on the regime
	ShiftThreshold float64 // |ShiftPct| that marks a move as finished

	// Output
	SampleTrades int    // Trades listed individually in the report
	TradesOutput string // Optional CSV export of normalized trades
	DBPath       string // Optional SQLite database for run history

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	// Input
	cfg.SnapshotDir = getEnv("SNAPSHOT_DIR", "./data")
	cfg.SnapshotFiles = getEnvAsList("SNAPSHOT_FILES", DefaultSnapshotFiles)

	// Strategy Parameters
	cfg.WindowSize, err = getEnvAsIntRequired("WINDOW_SIZE", backtesting.DefaultWindowSize)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid WINDOW_SIZE: %v", err))
	}
	cfg.ShiftThreshold, err = getEnvAsFloatRequired("SHIFT_THRESHOLD", crossing.DefaultThreshold)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SHIFT_THRESHOLD: %v", err))
	}

	// Output
	cfg.SampleTrades, err = getEnvAsIntRequired("SAMPLE_TRADES", 20)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SAMPLE_TRADES: %v", err))
	}
	cfg.TradesOutput = getEnv("TRADES_OUTPUT", "")
	cfg.DBPath = getEnv("DB_PATH", "")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", LogFormatText))

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// Validate checks a Config assembled outside LoadConfig, e.g. after flag overrides.
func (c *Config) Validate() error {
	if errs := c.validate(); len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validate() []string {
	var errs []string
	if c.SnapshotDir == "" {
		errs = append(errs, "SNAPSHOT_DIR must be set")
	}
	if len(c.SnapshotFiles) == 0 {
		errs = append(errs, "SNAPSHOT_FILES must list at least one file")
	}
	if c.WindowSize <= 0 {
		errs = append(errs, "WINDOW_SIZE must be positive")
	}
	if c.ShiftThreshold <= 0 {
		errs = append(errs, "SHIFT_THRESHOLD must be positive")
	}
	if c.SampleTrades < 0 {
		errs = append(errs, "SAMPLE_TRADES cannot be negative")
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be %q or %q", LogFormatText, LogFormatJSON))
	}
	return errs
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

// getEnvAsList splits a comma separated value, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	return SplitList(getEnv(key, strings.Join(defaultValue, ",")))
}

// SplitList splits a comma separated list and trims each entry.
func SplitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
