package collector

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"BollingerChart/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data  map[string][]model.PricePoint
	Err   map[string]error
	Calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyAdjusted(_ context.Context, symbol string, _, _ time.Time) ([]model.PricePoint, error) {
	m.Calls = append(m.Calls, symbol)
	if err, ok := m.Err[symbol]; ok {
		return nil, err
	}
	return m.Data[symbol], nil
}

// GenerateMockPoints builds count consecutive daily points starting at
// start, with prices produced by priceAt.
func GenerateMockPoints(start time.Time, count int, priceAt func(i int) float64) []model.PricePoint {
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Date:     toDate(start.AddDate(0, 0, i)),
			AdjClose: priceAt(i),
		}
	}
	return points
}

// Collector fetches every symbol and aligns them on a shared calendar.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches adjusted closes for symbols over [start, end], left-joins
// them onto the daily calendar and drops rows without a primary value.
func (c *Collector) Collect(ctx context.Context, symbols []string, start, end time.Time) (*model.PriceSeries, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols given", model.ErrConfiguration)
	}
	start, end = toDate(start), toDate(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s after end %s", model.ErrConfiguration,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	calendar := dailyCalendar(start, end)
	columns := make([][]float64, len(symbols))

	for i, symbol := range symbols {
		points, err := c.Fetcher.FetchDailyAdjusted(ctx, symbol, start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: %s via %s: %v", model.ErrDataFetch, symbol, c.Fetcher.Name(), err)
		}
		columns[i] = leftJoin(calendar, points)
		log.WithFields(log.Fields{"symbol": symbol, "points": len(points), "source": c.Fetcher.Name()}).Info("fetched daily adjusted closes")
		if len(points) == 0 {
			log.WithField("symbol", symbol).Warn("provider returned no data, column will be empty")
		}
	}

	series := dropMissingPrimary(symbols, calendar, columns)
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: no rows for primary symbol %s between %s and %s", model.ErrDataFetch,
			symbols[0], start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return series, nil
}

// dailyCalendar returns every day in [start, end].
func dailyCalendar(start, end time.Time) []time.Time {
	days := int(end.Sub(start).Hours()/24) + 1
	calendar := make([]time.Time, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		calendar = append(calendar, d)
	}
	return calendar
}

// leftJoin places points onto the calendar. Absent days are NaN; a later
// point for the same day replaces an earlier one.
func leftJoin(calendar []time.Time, points []model.PricePoint) []float64 {
	byDay := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byDay[toDate(p.Date)] = p.AdjClose
	}
	col := make([]float64, len(calendar))
	for i, d := range calendar {
		if v, ok := byDay[d]; ok {
			col[i] = v
		} else {
			col[i] = math.NaN()
		}
	}
	return col
}

func dropMissingPrimary(symbols []string, calendar []time.Time, columns [][]float64) *model.PriceSeries {
	series := &model.PriceSeries{
		Symbols: append([]string(nil), symbols...),
		Values:  make([][]float64, len(columns)),
	}
	for r, d := range calendar {
		if math.IsNaN(columns[0][r]) {
			continue
		}
		series.Dates = append(series.Dates, d)
		for i := range columns {
			series.Values[i] = append(series.Values[i], columns[i][r])
		}
	}
	return series
}

// toDate truncates t to midnight UTC of its calendar day.
func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
