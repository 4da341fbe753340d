// Package layout derives axis bounds, tick increments and annotation
// offsets for a price chart. Every function here is pure.
package layout

import (
	"fmt"
	"math"
	"time"

	"BollingerChart/internal/calculator"
	"BollingerChart/internal/model"
)

const (
	// yMultiple is the rounding unit for price bounds and increments.
	yMultiple = 10
	// minYIncrement is used when the price range collapses to zero.
	minYIncrement = 10
)

// Tick is a labelled axis position. X positions are in DateNum units.
type Tick struct {
	Value float64
	Label string
}

// Compute derives the chart layout from the primary price column. The style
// is validated but does not change any number.
func Compute(prices []float64, dates []time.Time, years int, style model.Style) (*model.Layout, error) {
	if _, err := model.ParseStyle(string(style)); err != nil {
		return nil, err
	}
	if years < 1 {
		return nil, fmt.Errorf("%w: years must be positive, got %d", model.ErrConfiguration, years)
	}
	if len(prices) == 0 || len(prices) != len(dates) {
		return nil, fmt.Errorf("%w: %d prices for %d dates", model.ErrDegenerateRange, len(prices), len(dates))
	}

	low, high, err := calculator.SeriesRange(prices)
	if err != nil {
		return nil, err
	}

	l := &model.Layout{}
	l.YMin = noNegZero(math.Floor(low/yMultiple) * yMultiple)
	l.YMax = noNegZero(math.Ceil(high/yMultiple) * yMultiple)
	l.YIncrement = YIncrement(l.YMin, l.YMax)
	// raise YMax so the increment divides the range
	if steps := (l.YMax - l.YMin) / l.YIncrement; steps != math.Trunc(steps) {
		l.YMax = l.YMin + math.Ceil(steps)*l.YIncrement
	}
	l.YRange = yRange(l.YMin, l.YMax, l.YIncrement)

	l.XMin = dates[0]
	l.XMax = dates[len(dates)-1]
	l.XSpan = DateNum(l.XMax) - DateNum(l.XMin)
	l.XIncrement = math.Trunc(l.XSpan / float64(years))
	if l.XIncrement < 1 {
		l.XIncrement = 1
	}

	yLabels := (l.YMax-l.YMin)/l.YIncrement + 1
	l.TitleOffset = math.Pow(l.YIncrement, yLabels/9)
	l.NotesYOffset = l.YIncrement * (yLabels / 5)
	l.NotesXOffset = l.XIncrement * (l.XSpan / l.XIncrement) / 20

	return l, nil
}

// YIncrement rounds a coarse step, about a tenth of the range, up to a
// multiple of ten. A zero range yields minYIncrement.
func YIncrement(yMin, yMax float64) float64 {
	inc := math.Ceil(math.Trunc((yMax-yMin)/yMultiple)/yMultiple) * yMultiple
	if inc <= 0 || math.IsNaN(inc) {
		return minYIncrement
	}
	return inc
}

func yRange(yMin, yMax, inc float64) []float64 {
	n := int(math.Round((yMax - yMin) / inc))
	r := make([]float64, n+1)
	for i := range r {
		r[i] = yMin + float64(i)*inc
	}
	return r
}

// YTicks labels every YRange value as a dollar amount.
func YTicks(l *model.Layout) []Tick {
	ticks := make([]Tick, len(l.YRange))
	for i, y := range l.YRange {
		ticks[i] = Tick{Value: y, Label: fmt.Sprintf("$%.0f", y)}
	}
	return ticks
}

// XTicks places a tick every XIncrement days from XMin, stopping before
// XMax, labelled with consecutive years starting at XMin's year.
func XTicks(l *model.Layout) []Tick {
	start, end := math.Trunc(DateNum(l.XMin)), math.Trunc(DateNum(l.XMax))
	var ticks []Tick
	for i, x := 0, start; x < end; i, x = i+1, x+l.XIncrement {
		ticks = append(ticks, Tick{Value: x, Label: fmt.Sprintf("%d", l.XMin.Year()+i)})
	}
	return ticks
}

// BandView returns the vertical view for band charts, which follows the
// bands instead of the prices: floor of the lowest lower band minus one to
// ceil of the highest upper band plus one.
func BandView(bands *model.BandSeries) (low, high float64, err error) {
	if bands.Len() == 0 {
		return 0, 0, fmt.Errorf("%w: no band rows", model.ErrInsufficientHistory)
	}
	lo, _, err := calculator.SeriesRange(bands.Lower)
	if err != nil {
		return 0, 0, err
	}
	_, hi, err := calculator.SeriesRange(bands.Upper)
	if err != nil {
		return 0, 0, err
	}
	return math.Floor(lo) - 1, math.Ceil(hi) + 1, nil
}

// DateNum converts a date to fractional days since the Unix epoch.
func DateNum(t time.Time) float64 {
	return float64(t.Unix()) / 86400
}

func noNegZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
