package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooBody = `{
  "chart": {
    "result": [{
      "meta": {"gmtoffset": -18000},
      "timestamp": [1578061800, 1577975400, 1578321000],
      "indicators": {
        "quote": [{"close": [322.41, 324.87, null]}],
        "adjclose": [{"adjclose": [301.5, 303.8, null]}]
      }
    }],
    "error": null
  }
}`

func TestYahooFetcher_ParsesAdjClose(t *testing.T) {
	var gotPath, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		_, _ = w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	points, err := f.FetchDailyAdjusted(context.Background(), "SPX", day(2020, 1, 1), day(2020, 1, 31))
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Equal(t, "1d", gotInterval)
	require.Len(t, points, 2, "null values are skipped")
	assert.Equal(t, day(2020, 1, 2), points[0].Date)
	assert.Equal(t, 303.8, points[0].AdjClose)
	assert.Equal(t, day(2020, 1, 3), points[1].Date)
	assert.Equal(t, 301.5, points[1].AdjClose)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyAdjusted(context.Background(), "NOPE", day(2020, 1, 1), day(2020, 1, 31))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooFetcher_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyAdjusted(context.Background(), "SPY", day(2020, 1, 1), day(2020, 1, 31))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

const avBody = `{
  "Meta Data": {"2. Symbol": "IBM"},
  "Time Series (Daily)": {
    "2020-01-03": {"4. close": "134.34", "5. adjusted close": "110.12"},
    "2020-01-02": {"4. close": "135.42", "5. adjusted close": "111.00"},
    "2019-12-31": {"4. close": "134.04", "5. adjusted close": "109.87"}
  }
}`

func TestAlphaVantageFetcher_ParsesAndFilters(t *testing.T) {
	var gotFunction, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFunction = r.URL.Query().Get("function")
		gotKey = r.URL.Query().Get("apikey")
		_, _ = w.Write([]byte(avBody))
	}))
	defer srv.Close()

	f := NewAlphaVantageFetcher("demo", "")
	f.BaseURL = srv.URL

	points, err := f.FetchDailyAdjusted(context.Background(), "IBM", day(2020, 1, 1), day(2020, 12, 31))
	require.NoError(t, err)

	assert.Equal(t, "TIME_SERIES_DAILY_ADJUSTED", gotFunction)
	assert.Equal(t, "demo", gotKey)
	require.Len(t, points, 2)
	assert.Equal(t, day(2020, 1, 2), points[0].Date)
	assert.Equal(t, 111.00, points[0].AdjClose)
	assert.Equal(t, 110.12, points[1].AdjClose)
}

func TestAlphaVantageFetcher_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	}))
	defer srv.Close()

	f := NewAlphaVantageFetcher("demo", "")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyAdjusted(context.Background(), "???", day(2020, 1, 1), day(2020, 12, 31))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API call")
}
