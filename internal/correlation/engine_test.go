package correlation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/model"
)

func day(i int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func returnRecords(ticker string, returns []*float64) []model.MetricRecord {
	recs := make([]model.MetricRecord, len(returns))
	for i, r := range returns {
		recs[i] = model.MetricRecord{Date: day(i), Ticker: ticker, Return1d: r}
	}
	return recs
}

// variedReturns produces a deterministic series with real variance.
func variedReturns(n int) []*float64 {
	out := make([]*float64, n)
	for i := 0; i < n; i++ {
		v := 0.01 * math.Sin(float64(i)*1.3)
		out[i] = &v
	}
	return out
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(Params{Window: 0, MinRows: 15, MinJoint: 10})
	assert.Error(t, err)

	_, err = NewEngine(Params{Window: 30, MinRows: 31, MinJoint: 10})
	assert.Error(t, err)

	_, err = NewEngine(DefaultParams())
	assert.NoError(t, err)
}

func TestProportionalEntitiesFullyCorrelated(t *testing.T) {
	e, err := NewEngine(DefaultParams())
	require.NoError(t, err)

	// B tracks A with a constant multiplicative factor, so their daily
	// returns are identical and every defined correlation is 1.
	returns := variedReturns(34)
	records := append(returnRecords("AAA", returns), returnRecords("BBB", returns)...)

	out := e.Compute(records)
	require.NotEmpty(t, out)

	// Dates with fewer than 15 rows of history are skipped; 34 aligned
	// rows leave 20 dates with a defined pair.
	assert.Len(t, out, 20)
	assert.Equal(t, day(14), out[0].Date)
	for _, rec := range out {
		assert.Equal(t, "AAA", rec.TickerA)
		assert.Equal(t, "BBB", rec.TickerB)
		assert.InDelta(t, 1.0, rec.Corr30d, 1e-9)
	}
}

func TestCanonicalPairOrdering(t *testing.T) {
	e, err := NewEngine(DefaultParams())
	require.NoError(t, err)

	returns := variedReturns(20)
	shifted := make([]*float64, len(returns))
	for i, r := range returns {
		v := *r + 0.001*float64(i%3)
		shifted[i] = &v
	}

	// Feed tickers out of order; emission must still be sorted.
	var records []model.MetricRecord
	records = append(records, returnRecords("ZZ", returns)...)
	records = append(records, returnRecords("AA", shifted)...)
	records = append(records, returnRecords("MM", variedReturns(20))...)

	out := e.Compute(records)
	require.NotEmpty(t, out)

	seen := map[string]bool{}
	prevDate := time.Time{}
	for _, rec := range out {
		assert.Less(t, rec.TickerA, rec.TickerB, "pairs are ordered ascending")
		assert.False(t, rec.Date.Before(prevDate), "dates are ascending")
		prevDate = rec.Date

		key := model.DateKey(rec.Date) + "|" + rec.TickerA + "|" + rec.TickerB
		assert.False(t, seen[key], "pair %s appears once", key)
		seen[key] = true
	}

	// Identical input in a different order produces the identical output.
	var reordered []model.MetricRecord
	reordered = append(reordered, returnRecords("MM", variedReturns(20))...)
	reordered = append(reordered, returnRecords("AA", shifted)...)
	reordered = append(reordered, returnRecords("ZZ", returns)...)
	assert.Equal(t, out, e.Compute(reordered))
}

func TestInsufficientRowsSkipped(t *testing.T) {
	e, err := NewEngine(DefaultParams())
	require.NoError(t, err)

	returns := variedReturns(14) // one short of the 15-row minimum
	records := append(returnRecords("AAA", returns), returnRecords("BBB", returns)...)
	assert.Empty(t, e.Compute(records))
}

func TestMinJointObservationsPerPair(t *testing.T) {
	e, err := NewEngine(DefaultParams())
	require.NoError(t, err)

	full := variedReturns(20)

	// BBB only has 9 defined returns: below the joint minimum, the pair is
	// excluded rather than zero-filled.
	sparse := make([]*float64, 20)
	copy(sparse, variedReturns(20)[:9])
	records := append(returnRecords("AAA", full), returnRecords("BBB", sparse)...)
	assert.Empty(t, e.Compute(records))

	// With a tenth defined return the pair qualifies.
	sparse10 := make([]*float64, 20)
	copy(sparse10, variedReturns(20)[:10])
	records = append(returnRecords("AAA", full), returnRecords("BBB", sparse10)...)
	assert.NotEmpty(t, e.Compute(records))
}

func TestDegenerateVarianceSkipped(t *testing.T) {
	e, err := NewEngine(DefaultParams())
	require.NoError(t, err)

	flat := make([]*float64, 20)
	for i := range flat {
		v := 0.0
		flat[i] = &v
	}
	records := append(returnRecords("AAA", flat), returnRecords("BBB", variedReturns(20))...)
	assert.Empty(t, e.Compute(records))
}

func TestFewerThanTwoEntities(t *testing.T) {
	e, err := NewEngine(DefaultParams())
	require.NoError(t, err)

	assert.Empty(t, e.Compute(returnRecords("AAA", variedReturns(40))))
	assert.Empty(t, e.Compute(nil))
}

func TestPearsonSymmetry(t *testing.T) {
	xs := []float64{0.01, -0.02, 0.005, 0.03, -0.01, 0.02, -0.005, 0.015, 0.0, -0.025}
	ys := []float64{0.02, -0.01, 0.0, 0.025, -0.02, 0.01, 0.005, 0.02, -0.01, -0.03}

	ab, ok := pearson(xs, ys)
	require.True(t, ok)
	ba, ok := pearson(ys, xs)
	require.True(t, ok)
	assert.InDelta(t, ab, ba, 1e-15)
	assert.GreaterOrEqual(t, ab, -1.0)
	assert.LessOrEqual(t, ab, 1.0)

	// Perfect linear relationship.
	double := make([]float64, len(xs))
	for i, v := range xs {
		double[i] = 2 * v
	}
	r, ok := pearson(xs, double)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)

	// Zero variance is undefined, not NaN.
	flat := make([]float64, len(xs))
	_, ok = pearson(xs, flat)
	assert.False(t, ok)
}
