package calculator

import (
	"fmt"

	"BollingerChart/internal/model"
)

const (
	// DefaultWindow is the rolling window length in trading days.
	DefaultWindow = 30
	// DefaultMultiplier is the band width in standard deviations.
	DefaultMultiplier = 3.0
)

// BollingerBands computes the envelope of the primary column of series.
// The standard deviation is the sample (n-1) deviation. The first window-1
// rows have no complete window and are not part of the result.
func BollingerBands(series *model.PriceSeries, window int, k float64) (*model.BandSeries, error) {
	if window < 2 {
		return nil, fmt.Errorf("%w: window must be at least 2, got %d", model.ErrConfiguration, window)
	}
	if series.Len() < window {
		return nil, fmt.Errorf("%w: %d rows, window needs %d", model.ErrInsufficientHistory, series.Len(), window)
	}

	means, stds, err := RollingMeanStd(series.Primary(), window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInsufficientHistory, err)
	}

	bands := &model.BandSeries{
		Symbol: series.Symbols[0],
		Window: window,
		K:      k,
		Dates:  series.Dates[window-1:],
		Center: means,
		Upper:  make([]float64, len(means)),
		Lower:  make([]float64, len(means)),
	}
	for i := range means {
		bands.Upper[i] = means[i] + k*stds[i]
		bands.Lower[i] = means[i] - k*stds[i]
	}
	return bands, nil
}
