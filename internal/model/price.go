package model

import "time"

// PricePoint is a single validated daily OHLCV observation for one ticker.
// The pair (Date, Ticker) identifies the row; a later fetch for the same
// pair replaces it entirely.
type PricePoint struct {
	Date   time.Time // UTC calendar day
	Ticker string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// DateKey formats a date the way the store keys it.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
