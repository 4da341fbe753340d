package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BollingerChart/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCollect_LeftJoinDropsMissingPrimary(t *testing.T) {
	start, end := day(2020, 1, 1), day(2020, 1, 10)
	mock := &MockFetcher{Data: map[string][]model.PricePoint{
		// 4th and 5th are a weekend
		"SPY": {
			{Date: day(2020, 1, 2), AdjClose: 100},
			{Date: day(2020, 1, 3), AdjClose: 101},
			{Date: day(2020, 1, 6), AdjClose: 102},
			{Date: day(2020, 1, 7), AdjClose: 103},
		},
		"QQQ": {
			{Date: day(2020, 1, 2), AdjClose: 200},
			{Date: day(2020, 1, 4), AdjClose: 999}, // no SPY row, dropped
			{Date: day(2020, 1, 7), AdjClose: 203},
		},
	}}

	series, err := NewCollector(mock).Collect(context.Background(), []string{"SPY", "QQQ"}, start, end)
	require.NoError(t, err)

	assert.Equal(t, []string{"SPY", "QQQ"}, mock.Calls, "symbols are fetched in the order given")
	assert.Equal(t, []time.Time{day(2020, 1, 2), day(2020, 1, 3), day(2020, 1, 6), day(2020, 1, 7)}, series.Dates)
	assert.Equal(t, []float64{100, 101, 102, 103}, series.Primary())

	qqq := series.Column("QQQ")
	require.Len(t, qqq, 4)
	assert.Equal(t, 200.0, qqq[0])
	assert.True(t, math.IsNaN(qqq[1]))
	assert.True(t, math.IsNaN(qqq[2]))
	assert.Equal(t, 203.0, qqq[3])

	for _, v := range series.Primary() {
		assert.False(t, math.IsNaN(v))
	}
	for i := 1; i < series.Len(); i++ {
		assert.True(t, series.Dates[i].After(series.Dates[i-1]), "dates must be strictly increasing")
	}
}

func TestCollect_IgnoresPointsOutsideRange(t *testing.T) {
	mock := &MockFetcher{Data: map[string][]model.PricePoint{
		"SPY": {
			{Date: day(2019, 12, 31), AdjClose: 1},
			{Date: day(2020, 1, 2), AdjClose: 2},
			{Date: day(2021, 1, 1), AdjClose: 3},
		},
	}}
	series, err := NewCollector(mock).Collect(context.Background(), []string{"SPY"}, day(2020, 1, 1), day(2020, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, series.Primary())
}

func TestCollect_EmptyPrimaryIsFetchError(t *testing.T) {
	mock := &MockFetcher{Data: map[string][]model.PricePoint{
		"QQQ": {{Date: day(2020, 1, 2), AdjClose: 1}},
	}}
	_, err := NewCollector(mock).Collect(context.Background(), []string{"SPY", "QQQ"}, day(2020, 1, 1), day(2020, 1, 31))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDataFetch)
}

func TestCollect_ProviderFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	mock := &MockFetcher{
		Data: map[string][]model.PricePoint{"SPY": {{Date: day(2020, 1, 2), AdjClose: 1}}},
		Err:  map[string]error{"QQQ": boom},
	}
	_, err := NewCollector(mock).Collect(context.Background(), []string{"SPY", "QQQ"}, day(2020, 1, 1), day(2020, 1, 31))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDataFetch)
	assert.Contains(t, err.Error(), "QQQ")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCollect_StopsAtFirstFailingSymbol(t *testing.T) {
	mock := &MockFetcher{Err: map[string]error{
		"SPY": errors.New("spy unavailable"),
		"QQQ": errors.New("qqq unavailable"),
	}}
	_, err := NewCollector(mock).Collect(context.Background(), []string{"SPY", "QQQ", "IWM"}, day(2020, 1, 1), day(2020, 1, 31))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDataFetch)
	assert.Contains(t, err.Error(), "SPY via mock: spy unavailable")
	assert.NotContains(t, err.Error(), "QQQ")
	assert.Equal(t, []string{"SPY"}, mock.Calls, "no request is made after the first failure")
}

func TestCollect_InvalidInput(t *testing.T) {
	c := NewCollector(&MockFetcher{})

	_, err := c.Collect(context.Background(), nil, day(2020, 1, 1), day(2020, 1, 2))
	assert.ErrorIs(t, err, model.ErrConfiguration)

	_, err = c.Collect(context.Background(), []string{"SPY"}, day(2020, 2, 1), day(2020, 1, 1))
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestGenerateMockPoints(t *testing.T) {
	points := GenerateMockPoints(day(2020, 3, 1), 3, func(i int) float64 { return float64(10 * i) })
	require.Len(t, points, 3)
	assert.Equal(t, day(2020, 3, 3), points[2].Date)
	assert.Equal(t, 20.0, points[2].AdjClose)
}
