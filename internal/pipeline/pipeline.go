package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"MarketPulse/internal/correlation"
	"MarketPulse/internal/feed"
	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
	"MarketPulse/internal/store"
)

// Options bounds one run: which tickers to process, how far back to fetch,
// and where the exported snapshots go.
type Options struct {
	Tickers      []string
	LookbackDays int
	SnapshotDays int    // trailing window of the metrics snapshot, default 120
	MetricsCSV   string // snapshot path, empty disables the export
	PricesCSV    string // raw-prices export path, empty disables the export
}

// Pipeline runs the full batch transform: fetch, validate, persist raw
// prices, derive metrics, derive correlations, persist, export. Per-ticker
// failures are isolated and reported in the summary; store failures are
// fatal for the run.
type Pipeline struct {
	fetcher feed.Fetcher
	store   store.Store
	metrics *metrics.Engine
	corr    *correlation.Engine
	opts    Options
}

// New wires a pipeline. Options are assumed validated by the config layer.
func New(f feed.Fetcher, s store.Store, me *metrics.Engine, ce *correlation.Engine, opts Options) *Pipeline {
	return &Pipeline{fetcher: f, store: s, metrics: me, corr: ce, opts: opts}
}

// Run executes one pass. Tickers are processed independently in ascending
// order; a ticker that fails fetch or validation is skipped with a reason
// and writes nothing, without affecting the others. Correlations are
// computed only after every surviving ticker's metrics are available.
// Running twice over identical input yields identical store contents and
// byte-identical exports.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	started := time.Now()
	sum := &model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	tickers := append([]string(nil), p.opts.Tickers...)
	sort.Strings(tickers)

	var prices []model.PricePoint
	var metricRows []model.MetricRecord
	for _, ticker := range tickers {
		raw, err := p.fetcher.FetchDailyBars(ctx, ticker, p.opts.LookbackDays)
		if err != nil {
			log.Printf("[WARN] fetch %s: %v", ticker, err)
			sum.Skipped = append(sum.Skipped, model.SkippedEntity{Ticker: ticker, Reason: fmt.Sprintf("fetch: %v", err)})
			continue
		}
		series, err := feed.Clean(ticker, raw)
		if err != nil {
			log.Printf("[WARN] validate %s: %v", ticker, err)
			sum.Skipped = append(sum.Skipped, model.SkippedEntity{Ticker: ticker, Reason: err.Error()})
			continue
		}
		if len(series) == 0 {
			sum.Skipped = append(sum.Skipped, model.SkippedEntity{Ticker: ticker, Reason: "no usable observations"})
			continue
		}
		prices = append(prices, series...)
		metricRows = append(metricRows, p.metrics.Compute(series)...)
		sum.Processed = append(sum.Processed, ticker)
	}

	n, err := p.store.UpsertPrices(ctx, prices)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", sum.RunID, err)
	}
	sum.PriceRows = n

	n, err = p.store.UpsertMetrics(ctx, metricRows)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", sum.RunID, err)
	}
	sum.MetricRows = n

	corrRows := p.corr.Compute(metricRows)
	n, err = p.store.UpsertCorrelations(ctx, corrRows)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", sum.RunID, err)
	}
	sum.CorrRows = n

	if p.opts.MetricsCSV != "" {
		if _, err := store.ExportMetricsSnapshot(ctx, p.store, p.opts.MetricsCSV, p.snapshotDays()); err != nil {
			return nil, fmt.Errorf("run %s: %w", sum.RunID, err)
		}
		sum.SnapshotCSV = p.opts.MetricsCSV
	}
	if p.opts.PricesCSV != "" {
		if _, err := store.ExportRawPrices(ctx, p.store, p.opts.PricesCSV); err != nil {
			return nil, fmt.Errorf("run %s: %w", sum.RunID, err)
		}
		sum.PricesCSV = p.opts.PricesCSV
	}

	sum.Duration = time.Since(started)
	return sum, nil
}

func (p *Pipeline) snapshotDays() int {
	if p.opts.SnapshotDays > 0 {
		return p.opts.SnapshotDays
	}
	return 120
}
