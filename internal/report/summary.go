package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"MarketPulse/internal/model"
)

// FormatRunSummary renders a run summary as a readable multi-line report.
func FormatRunSummary(sum *model.RunSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("pipeline run %s | %s\n", sum.RunID, sum.StartedAt.UTC().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("  duration: %s\n", sum.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("  raw_prices rows:    %s\n", humanize.Comma(int64(sum.PriceRows))))
	b.WriteString(fmt.Sprintf("  daily_metrics rows: %s\n", humanize.Comma(int64(sum.MetricRows))))
	b.WriteString(fmt.Sprintf("  corr_30d rows:      %s\n", humanize.Comma(int64(sum.CorrRows))))

	if len(sum.Processed) > 0 {
		b.WriteString(fmt.Sprintf("  processed: %s\n", strings.Join(sum.Processed, ", ")))
	}
	if len(sum.Skipped) > 0 {
		b.WriteString("  skipped:\n")
		for _, s := range sum.Skipped {
			b.WriteString(fmt.Sprintf("    %s: %s\n", s.Ticker, s.Reason))
		}
	}
	if sum.SnapshotCSV != "" {
		b.WriteString(fmt.Sprintf("  metrics snapshot: %s\n", sum.SnapshotCSV))
	}
	if sum.PricesCSV != "" {
		b.WriteString(fmt.Sprintf("  raw prices export: %s\n", sum.PricesCSV))
	}
	return b.String()
}
