package model

import (
	"math"
	"time"
)

// PricePoint is a single daily adjusted close returned by a provider.
type PricePoint struct {
	Date     time.Time
	AdjClose float64
}

// PriceSeries holds one adjusted-close column per symbol, aligned on Dates.
// Missing values are stored as NaN. After cleaning, column 0 has none.
type PriceSeries struct {
	Symbols []string
	Dates   []time.Time
	Values  [][]float64
}

// Len returns the number of date rows.
func (p *PriceSeries) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Dates)
}

// Primary returns the first symbol's column.
func (p *PriceSeries) Primary() []float64 {
	if p == nil || len(p.Values) == 0 {
		return nil
	}
	return p.Values[0]
}

// Column returns the column for symbol, or nil if it is not in the series.
func (p *PriceSeries) Column(symbol string) []float64 {
	for i, s := range p.Symbols {
		if s == symbol {
			return p.Values[i]
		}
	}
	return nil
}

// Last returns the last non-missing value of column i and its row index.
// ok is false when the column has no values.
func (p *PriceSeries) Last(i int) (value float64, row int, ok bool) {
	col := p.Values[i]
	for r := len(col) - 1; r >= 0; r-- {
		if !math.IsNaN(col[r]) {
			return col[r], r, true
		}
	}
	return 0, -1, false
}
