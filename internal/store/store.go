package store

import (
	"context"
	"fmt"

	"MarketPulse/internal/model"
)

// ValidationError reports a row batch that violates the upsert input
// contract: duplicate primary keys within the same batch. The engines must
// never produce such a batch, so this is a programming error upstream, not
// a recoverable condition.
type ValidationError struct {
	Table string
	Key   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("store: duplicate key %q in batch for table %s", e.Key, e.Table)
}

// WriteError reports an upsert batch that could not be committed
// atomically. It carries the table and key range so the caller can retry
// the whole batch safely (every write is a full-row replace).
type WriteError struct {
	Table    string
	KeyRange string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: write %s [%s]: %v", e.Table, e.KeyRange, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store is the keyed persistence contract for the pipeline. Each upsert
// replaces whole rows by primary key, applies the entire batch atomically,
// and returns the number of rows written.
type Store interface {
	UpsertPrices(ctx context.Context, rows []model.PricePoint) (int, error)
	UpsertMetrics(ctx context.Context, rows []model.MetricRecord) (int, error)
	UpsertCorrelations(ctx context.Context, rows []model.CorrelationRecord) (int, error)

	// RecentMetrics returns daily_metrics rows whose date falls within
	// windowDays of the latest stored date, ordered date descending then
	// ticker ascending.
	RecentMetrics(ctx context.Context, windowDays int) ([]model.MetricRecord, error)

	// AllPrices returns every raw_prices row ordered date descending then
	// ticker ascending.
	AllPrices(ctx context.Context) ([]model.PricePoint, error)

	Close() error
}
