package collector

import (
	"context"
	"time"

	"BollingerChart/internal/model"
)

// Fetcher defines the interface for fetching daily adjusted closes.
// Returned points need not be sorted or confined to [start, end].
type Fetcher interface {
	FetchDailyAdjusted(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error)
	Name() string
}
