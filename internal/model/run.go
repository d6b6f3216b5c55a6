package model

import "time"

// SkippedEntity records a ticker excluded from a run and why.
type SkippedEntity struct {
	Ticker string
	Reason string
}

// RunSummary is the user-visible result of one pipeline run: rows written
// per store plus every ticker that was skipped and the reason. A ticker is
// never dropped silently.
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Processed   []string
	Skipped     []SkippedEntity
	PriceRows   int
	MetricRows  int
	CorrRows    int
	SnapshotCSV string
	PricesCSV   string
}
