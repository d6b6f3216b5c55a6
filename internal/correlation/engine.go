package correlation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"MarketPulse/internal/model"
)

// Params configures the rolling pairwise correlation.
type Params struct {
	Window   int // trailing rows per date, default 30
	MinRows  int // minimum rows in the window before any pair is computed, default 15
	MinJoint int // minimum jointly defined observations per pair, default 10
}

// DefaultParams returns the standard 30/15/10 configuration.
func DefaultParams() Params {
	return Params{Window: 30, MinRows: 15, MinJoint: 10}
}

// Engine computes rolling pairwise Pearson correlations over the aligned
// return series of all tickers in a run.
type Engine struct {
	params Params
}

// NewEngine validates the window parameters and returns an engine.
func NewEngine(p Params) (*Engine, error) {
	if p.Window <= 0 || p.MinRows <= 0 || p.MinJoint <= 0 {
		return nil, fmt.Errorf("correlation: parameters must be positive, got window=%d minRows=%d minJoint=%d",
			p.Window, p.MinRows, p.MinJoint)
	}
	if p.MinRows > p.Window {
		return nil, fmt.Errorf("correlation: minRows %d exceeds window %d", p.MinRows, p.Window)
	}
	return &Engine{params: p}, nil
}

// Compute re-aligns the daily returns of every ticker into a date-indexed
// wide view and emits one CorrelationRecord per date and unordered pair
// with a defined correlation. Output order is canonical: date ascending,
// then ticker_a, then ticker_b, so identical input always yields an
// identical record sequence. Fewer than two tickers yields no records.
func (e *Engine) Compute(records []model.MetricRecord) []model.CorrelationRecord {
	dates, tickers, view := align(records)
	if len(tickers) < 2 || len(dates) == 0 {
		return nil
	}

	p := e.params
	var out []model.CorrelationRecord
	for i := range dates {
		lo := i - p.Window + 1
		if lo < 0 {
			lo = 0
		}
		if i-lo+1 < p.MinRows {
			continue
		}
		for a := 0; a < len(tickers); a++ {
			for b := a + 1; b < len(tickers); b++ {
				var xs, ys []float64
				for r := lo; r <= i; r++ {
					x := view[r][a]
					y := view[r][b]
					if x == nil || y == nil {
						continue
					}
					xs = append(xs, *x)
					ys = append(ys, *y)
				}
				if len(xs) < p.MinJoint {
					continue
				}
				corr, ok := pearson(xs, ys)
				if !ok {
					continue
				}
				out = append(out, model.CorrelationRecord{
					Date:    dates[i],
					TickerA: tickers[a],
					TickerB: tickers[b],
					Corr30d: corr,
				})
			}
		}
	}
	return out
}

// align builds the wide view: rows are distinct dates ascending, columns
// are distinct tickers ascending, cells are the return_1d values (nil
// where a ticker has no return for that date).
func align(records []model.MetricRecord) ([]time.Time, []string, [][]*float64) {
	dateSet := map[string]time.Time{}
	tickerSet := map[string]bool{}
	for _, rec := range records {
		if rec.Return1d == nil {
			continue
		}
		dateSet[model.DateKey(rec.Date)] = rec.Date
		tickerSet[rec.Ticker] = true
	}

	keys := make([]string, 0, len(dateSet))
	for k := range dateSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	dates := make([]time.Time, len(keys))
	dateIdx := make(map[string]int, len(keys))
	for i, k := range keys {
		dates[i] = dateSet[k]
		dateIdx[k] = i
	}

	tickers := make([]string, 0, len(tickerSet))
	for t := range tickerSet {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	tickerIdx := make(map[string]int, len(tickers))
	for i, t := range tickers {
		tickerIdx[t] = i
	}

	view := make([][]*float64, len(dates))
	for i := range view {
		view[i] = make([]*float64, len(tickers))
	}
	for _, rec := range records {
		if rec.Return1d == nil {
			continue
		}
		view[dateIdx[model.DateKey(rec.Date)]][tickerIdx[rec.Ticker]] = rec.Return1d
	}
	return dates, tickers, view
}

// pearson computes the Pearson correlation of two equal-length samples.
// ok is false when either variance is zero or the sample is too small for
// a defined coefficient.
func pearson(xs, ys []float64) (corr float64, ok bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, false
	}
	var mx, my float64
	for i := 0; i < n; i++ {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, false
	}
	return cov / math.Sqrt(vx*vy), true
}
