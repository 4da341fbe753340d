package model

import "time"

// BandSeries is the Bollinger envelope of a price column. All slices share
// the same length; Dates is a suffix of the source PriceSeries dates.
type BandSeries struct {
	Symbol string
	Window int
	K      float64
	Dates  []time.Time
	Upper  []float64
	Center []float64
	Lower  []float64
}

// Len returns the number of band rows.
func (b *BandSeries) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Dates)
}
