package metrics

import (
	"fmt"

	"MarketPulse/internal/model"
)

// Params configures the per-entity indicator windows.
type Params struct {
	ShortWindow int // trailing observations for ma/vol short, default 7
	LongWindow  int // trailing observations for ma/vol long, default 30
	OscPeriod   int // Wilder smoothing period for the oscillator, default 14
}

// DefaultParams returns the standard 7/30/14 configuration.
func DefaultParams() Params {
	return Params{ShortWindow: 7, LongWindow: 30, OscPeriod: 14}
}

// Engine derives per-day indicator rows from one ticker's price series.
// Entities are independent; the engine holds no state between calls.
type Engine struct {
	params Params
}

// NewEngine validates the window parameters and returns an engine.
func NewEngine(p Params) (*Engine, error) {
	if p.ShortWindow <= 0 || p.LongWindow <= 0 || p.OscPeriod <= 0 {
		return nil, fmt.Errorf("metrics: windows must be positive, got short=%d long=%d osc=%d",
			p.ShortWindow, p.LongWindow, p.OscPeriod)
	}
	if p.ShortWindow >= p.LongWindow {
		return nil, fmt.Errorf("metrics: short window %d must be less than long window %d",
			p.ShortWindow, p.LongWindow)
	}
	return &Engine{params: p}, nil
}

// Compute derives one MetricRecord per price row. The input must be a
// single ticker's series, strictly ascending by date with no duplicate
// dates; the feed layer enforces that contract before the engine runs.
// Fields stay nil until their window's minimum-periods gate is satisfied.
// An empty series produces no rows.
func (e *Engine) Compute(series []model.PricePoint) []model.MetricRecord {
	if len(series) == 0 {
		return nil
	}

	p := e.params
	maShort := newWindow(p.ShortWindow)
	maLong := newWindow(p.LongWindow)
	volShort := newWindow(p.ShortWindow)
	volLong := newWindow(p.LongWindow)

	// Wilder smoothing state: recursive EWMA with alpha = 1/N, seeded from
	// the first delta. The oscillator stays nil until N deltas have been
	// observed, and stays nil whenever avgLoss is zero (a monotonically
	// rising series never gets a value).
	alpha := 1.0 / float64(p.OscPeriod)
	var avgGain, avgLoss float64
	deltas := 0

	out := make([]model.MetricRecord, 0, len(series))
	for i, pt := range series {
		rec := model.MetricRecord{Date: model.Day(pt.Date), Ticker: pt.Ticker}

		maShort.push(pt.Close)
		maLong.push(pt.Close)
		if maShort.full() {
			v := maShort.mean()
			rec.MA7 = &v
		}
		if maLong.full() {
			v := maLong.mean()
			rec.MA30 = &v
		}

		if i > 0 {
			prev := series[i-1].Close
			r := pt.Close/prev - 1
			rec.Return1d = &r

			volShort.push(r)
			volLong.push(r)
			if volShort.full() {
				if v, ok := volShort.sampleStd(); ok {
					rec.Vol7 = &v
				}
			}
			if volLong.full() {
				if v, ok := volLong.sampleStd(); ok {
					rec.Vol30 = &v
				}
			}

			delta := pt.Close - prev
			gain, loss := 0.0, 0.0
			if delta > 0 {
				gain = delta
			} else {
				loss = -delta
			}
			if deltas == 0 {
				avgGain, avgLoss = gain, loss
			} else {
				avgGain += alpha * (gain - avgGain)
				avgLoss += alpha * (loss - avgLoss)
			}
			deltas++

			if deltas >= p.OscPeriod && avgLoss > 0 {
				rs := avgGain / avgLoss
				rsi := 100 - 100/(1+rs)
				rec.RSI = &rsi
			}
		}

		out = append(out, rec)
	}
	return out
}
