package feed

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series map[string][]model.PricePoint // canned bars per ticker
	Errs   map[string]error              // per-ticker fetch failures
	Price  float64                       // base price for synthetic bars
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, ticker string, lookbackDays int) ([]model.PricePoint, error) {
	if err := m.Errs[ticker]; err != nil {
		return nil, fmt.Errorf("mock fetch %s: %w", ticker, err)
	}
	if bars, ok := m.Series[ticker]; ok {
		return bars, nil
	}
	base := m.Price
	if base == 0 {
		base = 100
	}
	return SyntheticBars(ticker, base, lookbackDays), nil
}

// SyntheticBars generates a deterministic daily series of count bars
// ending yesterday, drifting gently around basePrice.
func SyntheticBars(ticker string, basePrice float64, count int) []model.PricePoint {
	start := model.Day(time.Now().UTC()).AddDate(0, 0, -count)
	bars := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Ticker: ticker,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
