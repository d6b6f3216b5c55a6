package feed

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/model"
)

func bar(i int, close float64) model.PricePoint {
	return model.PricePoint{
		Date: time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC).AddDate(0, 0, i),
		Open: close, High: close * 1.01, Low: close * 0.99,
		Close: close, Volume: 100,
	}
}

func TestCleanDropsRowsWithoutClose(t *testing.T) {
	rows := []model.PricePoint{bar(0, 100), bar(1, 0), bar(2, 102)}
	out, err := Clean("AAPL", rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 100, out[0].Close, 1e-12)
	assert.InDelta(t, 102, out[1].Close, 1e-12)
}

func TestCleanNormalizesTickerAndDate(t *testing.T) {
	out, err := Clean("AAPL", []model.PricePoint{bar(0, 100)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "AAPL", out[0].Ticker)
	assert.Equal(t, "2024-05-01", model.DateKey(out[0].Date))
	assert.Zero(t, out[0].Date.Hour(), "date truncated to the calendar day")
}

func TestCleanRejectsDuplicateDates(t *testing.T) {
	rows := []model.PricePoint{bar(0, 100), bar(1, 101), bar(1, 102)}
	_, err := Clean("AAPL", rows)
	var cerr *ContractError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "AAPL", cerr.Ticker)
	assert.Contains(t, cerr.Reason, "duplicate date")
}

func TestCleanRejectsNonMonotonicDates(t *testing.T) {
	rows := []model.PricePoint{bar(2, 100), bar(0, 101)}
	_, err := Clean("AAPL", rows)
	var cerr *ContractError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "non-monotonic")
}

func TestCleanRejectsNonFiniteFields(t *testing.T) {
	row := bar(0, 100)
	row.Volume = math.Inf(1)
	_, err := Clean("AAPL", []model.PricePoint{row})
	var cerr *ContractError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "non-finite")
}

func TestCleanDropsNaNClose(t *testing.T) {
	row := bar(0, 100)
	row.Close = math.NaN()
	out, err := Clean("AAPL", []model.PricePoint{row})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCleanEmptyBatch(t *testing.T) {
	out, err := Clean("AAPL", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
