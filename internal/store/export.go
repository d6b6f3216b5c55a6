package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"MarketPulse/internal/model"
)

// ExportMetricsSnapshot projects the trailing windowDays of daily_metrics
// into a headered CSV at path, ordered date descending then ticker
// ascending. Undefined fields are written as empty cells, never as zero;
// rows with undefined fields are kept. Returns the number of data rows
// written.
func ExportMetricsSnapshot(ctx context.Context, s Store, path string, windowDays int) (int, error) {
	recs, err := s.RecentMetrics(ctx, windowDays)
	if err != nil {
		return 0, fmt.Errorf("export metrics snapshot: %w", err)
	}

	header := []string{"date", "ticker", "return_1d", "ma_7", "ma_30", "vol_7", "vol_30", "rsi"}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			model.DateKey(r.Date), r.Ticker,
			cell(r.Return1d), cell(r.MA7), cell(r.MA30),
			cell(r.Vol7), cell(r.Vol30), cell(r.RSI),
		})
	}
	if err := writeCSV(path, header, rows); err != nil {
		return 0, fmt.Errorf("export metrics snapshot: %w", err)
	}
	return len(rows), nil
}

// ExportRawPrices writes every raw_prices row to a headered CSV at path,
// ordered date descending then ticker ascending.
func ExportRawPrices(ctx context.Context, s Store, path string) (int, error) {
	prices, err := s.AllPrices(ctx)
	if err != nil {
		return 0, fmt.Errorf("export raw prices: %w", err)
	}

	header := []string{"date", "ticker", "open", "high", "low", "close", "volume"}
	rows := make([][]string, 0, len(prices))
	for _, p := range prices {
		rows = append(rows, []string{
			model.DateKey(p.Date), p.Ticker,
			num(p.Open), num(p.High), num(p.Low), num(p.Close), num(p.Volume),
		})
	}
	if err := writeCSV(path, header, rows); err != nil {
		return 0, fmt.Errorf("export raw prices: %w", err)
	}
	return len(rows), nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// cell serializes an optional metric field: nil becomes the explicit
// missing marker (an empty cell).
func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
