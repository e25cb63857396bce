package utils

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/ports"
)

// Snapshot export columns consumed by the backtest.
const (
	ColumnSymbol   = "Symbol"
	ColumnShiftPct = "ShiftPct"
)

// FileLoad records what happened to one listed snapshot file.
type FileLoad struct {
	Name    string
	Path    string
	Rows    int
	Missing bool
}

// LoadSnapshotFiles reads the listed files from dir and concatenates their rows: files in
// listed order, rows in file order. Files that do not exist are skipped with a warning.
// Relative names are resolved against dir; absolute names are used as given.
func LoadSnapshotFiles(ctx context.Context, dir string, files []string, logger ports.Logger) ([]domain.Snapshot, []FileLoad, error) {
	all := make([]domain.Snapshot, 0)
	loads := make([]FileLoad, 0, len(files))

	for _, name := range files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, name)
		}

		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn(ctx, "Snapshot file not found, skipping", map[string]interface{}{"path": path})
				loads = append(loads, FileLoad{Name: name, Path: path, Missing: true})
				continue
			}
			return nil, nil, fmt.Errorf("failed to stat snapshot file '%s': %w", path, err)
		}

		rows, err := ReadSnapshotsFromCSV(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "Loaded snapshot file", map[string]interface{}{"file": name, "rows": len(rows)})

		loads = append(loads, FileLoad{Name: name, Path: path, Rows: len(rows)})
		all = append(all, rows...)
	}

	return all, loads, nil
}

// ReadSnapshotsFromCSV reads the Symbol and ShiftPct columns of a snapshot export.
// UTF-8 and UTF-16 (with BOM) files are accepted; the delimiter is taken from the header
// line (comma, semicolon or tab).
func ReadSnapshotsFromCSV(filename string) ([]domain.Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readSnapshots(file, filename)
}

func readSnapshots(src io.Reader, name string) ([]domain.Snapshot, error) {
	br := bufio.NewReader(transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	headerLine, err := br.Peek(peekSize(br))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read header of '%s': %w", name, err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(string(headerLine))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read header of '%s': %w", name, err)
	}

	symbolIdx, shiftIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case ColumnSymbol:
			symbolIdx = i
		case ColumnShiftPct:
			shiftIdx = i
		}
	}
	if symbolIdx < 0 {
		return nil, fmt.Errorf("%s in '%s': %w", ColumnSymbol, name, ports.ErrMissingColumn)
	}
	if shiftIdx < 0 {
		return nil, fmt.Errorf("%s in '%s': %w", ColumnShiftPct, name, ports.ErrMissingColumn)
	}

	rows := make([]domain.Snapshot, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s': %w", name, err)
		}
		line, _ := reader.FieldPos(0)

		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if symbolIdx >= len(record) || shiftIdx >= len(record) {
			return nil, fmt.Errorf("'%s' line %d has %d fields: %w", name, line, len(record), ports.ErrMalformedRow)
		}

		shift, err := strconv.ParseFloat(strings.TrimSpace(record[shiftIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' line %d: invalid %s %q: %w", name, line, ColumnShiftPct, record[shiftIdx], ports.ErrMalformedRow)
		}
		if math.IsInf(shift, 0) || math.IsNaN(shift) {
			return nil, fmt.Errorf("'%s' line %d: non-finite %s %q: %w", name, line, ColumnShiftPct, record[shiftIdx], ports.ErrMalformedRow)
		}

		rows = append(rows, domain.Snapshot{
			Source:   name,
			Line:     line,
			Symbol:   strings.TrimSpace(record[symbolIdx]),
			ShiftPct: shift,
		})
	}

	return rows, nil
}

// peekSize bounds the header sniff to what the reader has buffered.
func peekSize(br *bufio.Reader) int {
	const maxHeader = 4096
	if br.Size() < maxHeader {
		return br.Size()
	}
	return maxHeader
}

func detectDelimiter(head string) rune {
	if i := strings.IndexAny(head, "\r\n"); i >= 0 {
		head = head[:i]
	}
	switch {
	case strings.Contains(head, ","):
		return ','
	case strings.Contains(head, ";"):
		return ';'
	case strings.Contains(head, "\t"):
		return '\t'
	default:
		return ','
	}
}

var tradeHeader = []string{
	"index", "symbol", "regime", "actual", "shift_pct", "pnl", "win", "long_count", "short_count", "last_normalized",
}

// WriteTradesToCSV writes trades to filename, creating parent directories as needed.
func WriteTradesToCSV(trades []domain.Trade, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := writer.Write([]string{
			strconv.Itoa(t.Index),
			t.Symbol,
			string(t.Regime),
			string(t.Actual),
			strconv.FormatFloat(t.ShiftPct, 'f', -1, 64),
			strconv.FormatFloat(t.PNL, 'f', -1, 64),
			strconv.FormatBool(t.Win),
			strconv.Itoa(t.LongCount),
			strconv.Itoa(t.ShortCount),
			string(t.LastNormalized),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadTradesFromCSV reads a file produced by WriteTradesToCSV.
func ReadTradesFromCSV(filename string) ([]domain.Trade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read trades from '%s': %w", filename, err)
	}
	if len(records) == 0 {
		return []domain.Trade{}, nil
	}

	trades := make([]domain.Trade, 0, len(records)-1)
	for i, rec := range records[1:] {
		t, err := parseTrade(rec)
		if err != nil {
			return nil, fmt.Errorf("'%s' line %d: %w", filename, i+2, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseTrade(rec []string) (domain.Trade, error) {
	var t domain.Trade
	if len(rec) != len(tradeHeader) {
		return t, fmt.Errorf("expected %d fields, got %d: %w", len(tradeHeader), len(rec), ports.ErrMalformedRow)
	}

	var err error
	if t.Index, err = strconv.Atoi(rec[0]); err != nil {
		return t, fmt.Errorf("index: %w", ports.ErrMalformedRow)
	}
	t.Symbol = rec[1]
	if t.Regime, err = parseDirection("regime", rec[2]); err != nil {
		return t, err
	}
	if t.Actual, err = parseDirection("actual", rec[3]); err != nil {
		return t, err
	}
	if t.ShiftPct, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return t, fmt.Errorf("shift_pct: %w", ports.ErrMalformedRow)
	}
	if t.PNL, err = strconv.ParseFloat(rec[5], 64); err != nil {
		return t, fmt.Errorf("pnl: %w", ports.ErrMalformedRow)
	}
	if t.Win, err = strconv.ParseBool(rec[6]); err != nil {
		return t, fmt.Errorf("win: %w", ports.ErrMalformedRow)
	}
	if t.LongCount, err = strconv.Atoi(rec[7]); err != nil {
		return t, fmt.Errorf("long_count: %w", ports.ErrMalformedRow)
	}
	if t.ShortCount, err = strconv.Atoi(rec[8]); err != nil {
		return t, fmt.Errorf("short_count: %w", ports.ErrMalformedRow)
	}
	if t.LastNormalized, err = parseDirection("last_normalized", rec[9]); err != nil {
		return t, err
	}
	return t, nil
}

func parseDirection(column, value string) (domain.Direction, error) {
	d, ok := domain.ParseDirection(value)
	if !ok {
		return "", fmt.Errorf("%s %q: %w", column, value, ports.ErrMalformedRow)
	}
	return d, nil
}
