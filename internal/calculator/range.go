package calculator

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"BollingerChart/internal/model"
)

// SeriesRange returns the minimum and maximum of values, skipping NaN
// markers. It fails when nothing finite remains.
func SeriesRange(values []float64) (low, high float64, err error) {
	finite := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("%w: infinite value in series", model.ErrDegenerateRange)
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return 0, 0, fmt.Errorf("%w: no values in series", model.ErrDegenerateRange)
	}
	if low, err = finite.Min(); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", model.ErrDegenerateRange, err)
	}
	if high, err = finite.Max(); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", model.ErrDegenerateRange, err)
	}
	return low, high, nil
}
