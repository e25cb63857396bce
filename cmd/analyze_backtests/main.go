package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/strategy/analytics"
	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/utils"
)

func main() {
	dir := flag.String("dir", "data", "directory holding exported trade files")
	prefix := flag.String("prefix", "trades", "file name prefix of exported trade files")
	flag.Parse()

	// Find all exported trade files
	files, err := findTradeFiles(*dir, *prefix)
	if err != nil {
		log.Fatalf("Error finding trade files: %v", err)
	}

	if len(files) == 0 {
		log.Println("No trade files found. Run the backtest with TRADES_OUTPUT set first.")
		return
	}

	summaries := make(map[string]analytics.Summary, len(files))
	for _, file := range files {
		trades, err := utils.ReadTradesFromCSV(file)
		if err != nil {
			log.Printf("Error reading trades from %s: %v", file, err)
			continue
		}
		summaries[file] = analytics.Summarize(trades)
	}

	writeSummaryTable(os.Stdout, files, summaries)

	fmt.Println("\n## Regime Breakdown")
	writeRegimeTables(os.Stdout, files, summaries)
}

// writeSummaryTable prints one row per file. Files that could not be read are left out.
func writeSummaryTable(out io.Writer, files []string, summaries map[string]analytics.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tTrades\tWinRate\tAvgWin\tAvgLoss\tTotalPnL\tPF\tMaxWinStreak\tMaxLossStreak\t")

	for _, file := range files {
		s, ok := summaries[file]
		if !ok {
			continue
		}
		if s.NoData {
			fmt.Fprintf(w, "%s\t0\tn/a\tn/a\tn/a\t0.00\tn/a\t0\t0\t\n", filepath.Base(file))
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%d\t\n",
			filepath.Base(file),
			s.TotalTrades,
			s.WinRate*100,
			s.AverageWin,
			s.AverageLoss,
			s.TotalPNL,
			s.ProfitFactor,
			s.MaxConsecutiveWins,
			s.MaxConsecutiveLosses,
		)
	}
	w.Flush()
}

// writeRegimeTables prints the LONG/SHORT split of every file.
func writeRegimeTables(out io.Writer, files []string, summaries map[string]analytics.Summary) {
	for _, file := range files {
		s, ok := summaries[file]
		if !ok {
			continue
		}

		fmt.Fprintf(out, "\nFile: %s\n", filepath.Base(file))
		if s.NoData {
			fmt.Fprintln(out, "No trades.")
			continue
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Regime\tCount\tWins\tWinRate\tTotal PnL\tAvg PnL")
		for _, rs := range s.ByRegime {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\t%.2f\t%.2f\n",
				rs.Regime, rs.Trades, rs.Wins, rs.WinRate*100, rs.TotalPNL, rs.TotalPNL/float64(rs.Trades))
		}
		w.Flush()
	}
}

// findTradeFiles finds all exported trade files in dir, sorted by name.
func findTradeFiles(dir, prefix string) ([]string, error) {
	var files []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(entry.Name(), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
