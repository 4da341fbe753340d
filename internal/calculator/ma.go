package calculator

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// RollingMeanStd computes the trailing mean and sample standard deviation of
// every complete window. Element j of the results covers
// values[j : j+period], so len(results) == len(values)-period+1.
func RollingMeanStd(values []float64, period int) (means, stds []float64, err error) {
	if period < 2 {
		return nil, nil, errors.New("period must be at least 2")
	}
	if len(values) < period {
		return nil, nil, errors.New("not enough data for rolling window")
	}
	n := len(values) - period + 1
	means = make([]float64, n)
	stds = make([]float64, n)
	for j := 0; j < n; j++ {
		means[j], stds[j] = stat.MeanStdDev(values[j:j+period], nil)
	}
	return means, stds, nil
}
