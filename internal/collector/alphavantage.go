package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"BollingerChart/internal/model"
)

// AlphaVantageBaseURL is the Alpha Vantage REST host.
const AlphaVantageBaseURL = "https://www.alphavantage.co"

const avDailyAdjustedKey = "Time Series (Daily)"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage
// TIME_SERIES_DAILY_ADJUSTED endpoint.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a new fetcher with optional proxy support.
func NewAlphaVantageFetcher(apiKey, proxyURL string) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL: AlphaVantageBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// FetchDailyAdjusted downloads the full daily adjusted history and keeps the
// points inside [start, end].
func (f *AlphaVantageFetcher) FetchDailyAdjusted(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("datatype", "json")
	q.Set("apikey", f.APIKey)
	endpoint := fmt.Sprintf("%s/query?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	// Errors and rate-limit notices come back as 200 with a message key.
	for _, key := range []string{"Error Message", "Note", "Information"} {
		if msg, ok := raw[key]; ok {
			var text string
			_ = json.Unmarshal(msg, &text)
			return nil, fmt.Errorf("alphavantage api error: %s", text)
		}
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(raw[avDailyAdjustedKey], &series); err != nil {
		return nil, fmt.Errorf("alphavantage decode time series: %w", err)
	}

	points := make([]model.PricePoint, 0, len(series))
	for day, fields := range series {
		date, err := time.ParseInLocation("2006-01-02", day, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: bad date %q: %w", day, err)
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		value, ok := adjustedClose(fields)
		if !ok {
			log.WithFields(log.Fields{"symbol": symbol, "date": day}).Warn("alphavantage: row without adjusted close")
			continue
		}
		points = append(points, model.PricePoint{Date: date, AdjClose: value})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// adjustedClose finds the "5. adjusted close" field regardless of its
// numeric prefix.
func adjustedClose(fields map[string]string) (float64, bool) {
	for key, value := range fields {
		if !strings.HasSuffix(key, "adjusted close") {
			continue
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
