package model

import "time"

// MetricRecord holds the derived per-day indicators for one ticker.
// Pointer fields are nil until the relevant window's minimum-periods
// requirement is met; nil is persisted as NULL and exported as an empty
// cell, never as zero.
type MetricRecord struct {
	Date     time.Time
	Ticker   string
	Return1d *float64
	MA7      *float64
	MA30     *float64
	Vol7     *float64
	Vol30    *float64
	RSI      *float64
}

// CorrelationRecord is one rolling pairwise correlation observation.
// TickerA sorts strictly before TickerB so each unordered pair appears
// at most once per date.
type CorrelationRecord struct {
	Date    time.Time
	TickerA string
	TickerB string
	Corr30d float64
}
