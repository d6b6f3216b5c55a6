package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"MarketPulse/internal/model"
)

func TestFormatRunSummary(t *testing.T) {
	sum := &model.RunSummary{
		RunID:       "b1946ac9-2d46-4a22-9f7a-8e3f6f8a9b10",
		StartedAt:   time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC),
		Duration:    1530 * time.Millisecond,
		Processed:   []string{"AAPL", "MSFT"},
		Skipped:     []model.SkippedEntity{{Ticker: "TSLA", Reason: "fetch: provider unavailable"}},
		PriceRows:   1234,
		MetricRows:  1234,
		CorrRows:    370,
		SnapshotCSV: "data/daily_metrics.csv",
	}

	out := FormatRunSummary(sum)

	assert.Contains(t, out, sum.RunID)
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "370")
	assert.Contains(t, out, "AAPL, MSFT")
	assert.Contains(t, out, "TSLA: fetch: provider unavailable")
	assert.Contains(t, out, "data/daily_metrics.csv")
	assert.Contains(t, out, "1.53s")
}

func TestFormatRunSummaryNoSkips(t *testing.T) {
	sum := &model.RunSummary{
		RunID:     "run-1",
		StartedAt: time.Now(),
	}
	out := FormatRunSummary(sum)
	assert.NotContains(t, out, "skipped:")
}
