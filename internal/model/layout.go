package model

import "time"

// Layout holds the derived axis bounds, tick increments and annotation
// offsets for a chart. XIncrement, XSpan and NotesXOffset are in days.
type Layout struct {
	YMin       float64
	YMax       float64
	YIncrement float64
	YRange     []float64

	XMin       time.Time
	XMax       time.Time
	XIncrement float64
	XSpan      float64

	TitleOffset  float64
	NotesYOffset float64
	NotesXOffset float64
}
