package feed

import (
	"context"
	"fmt"
	"math"

	"MarketPulse/internal/model"
)

// Fetcher retrieves raw daily OHLCV observations for one ticker from an
// external price source.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, ticker string, lookbackDays int) ([]model.PricePoint, error)
	Name() string
}

// ContractError reports a raw batch that violates the feed input contract
// for one ticker: duplicate dates, non-ascending dates, or non-finite
// price fields. It is fatal for that ticker's processing only.
type ContractError struct {
	Ticker string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("feed: ticker %s: %s", e.Ticker, e.Reason)
}

// Clean prepares one ticker's raw batch for the metrics engine. Rows
// without a usable close price are dropped (a close is mandatory for all
// derived computation). The surviving rows must be strictly ascending by
// date with no duplicates and carry finite fields; a violation returns a
// ContractError and the ticker writes nothing this run.
func Clean(ticker string, rows []model.PricePoint) ([]model.PricePoint, error) {
	out := make([]model.PricePoint, 0, len(rows))
	for _, r := range rows {
		if r.Close <= 0 || math.IsNaN(r.Close) {
			continue
		}
		if !finite(r.Open) || !finite(r.High) || !finite(r.Low) || !finite(r.Close) || !finite(r.Volume) {
			return nil, &ContractError{Ticker: ticker,
				Reason: fmt.Sprintf("non-finite field at %s", model.DateKey(r.Date))}
		}
		r.Date = model.Day(r.Date)
		r.Ticker = ticker
		out = append(out, r)
	}

	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1].Date, out[i].Date
		if cur.Equal(prev) {
			return nil, &ContractError{Ticker: ticker,
				Reason: fmt.Sprintf("duplicate date %s in batch", model.DateKey(cur))}
		}
		if cur.Before(prev) {
			return nil, &ContractError{Ticker: ticker,
				Reason: fmt.Sprintf("non-monotonic dates: %s after %s", model.DateKey(cur), model.DateKey(prev))}
		}
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
