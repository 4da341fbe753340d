package model

import (
	"fmt"
	"strings"
	"time"
)

// Selection chooses what the chart draws.
type Selection string

const (
	SelectionLine           Selection = "line"
	SelectionBollingerBands Selection = "bollinger_bands"
)

// ParseSelection maps a config value to a Selection. Unknown values are
// rejected rather than defaulted.
func ParseSelection(s string) (Selection, error) {
	switch Selection(strings.ToLower(strings.TrimSpace(s))) {
	case SelectionLine:
		return SelectionLine, nil
	case SelectionBollingerBands:
		return SelectionBollingerBands, nil
	}
	return "", fmt.Errorf("%w: unknown selection %q (want line or bollinger_bands)", ErrConfiguration, s)
}

// Style only changes chart chrome, never the data or the layout numbers.
type Style string

const (
	StyleClean        Style = "clean"
	StyleProfessional Style = "professional"
)

// ParseStyle maps a config value to a Style.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleClean:
		return StyleClean, nil
	case StyleProfessional:
		return StyleProfessional, nil
	}
	return "", fmt.Errorf("%w: unknown style %q (want clean or professional)", ErrConfiguration, s)
}

// ChartRequest carries every parameter of a single chart run.
type ChartRequest struct {
	Symbols    []string
	StartYear  int
	Years      int
	Selection  Selection
	Style      Style
	Notes      string
	Window     int
	Multiplier float64
	OutputDir  string
	Format     string
	ExportCSV  bool
}

// StartDate is the first day of the master calendar.
func (r ChartRequest) StartDate() time.Time {
	return time.Date(r.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// EndDate is the last day of the master calendar.
func (r ChartRequest) EndDate() time.Time {
	return time.Date(r.StartYear+r.Years-1, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Title builds the chart title, which is also the output file stem.
// Symbols appear in reverse order, e.g. "QQQ SPY Adjusted Close (2010-2015)".
func (r ChartRequest) Title() string {
	var b strings.Builder
	for i := len(r.Symbols) - 1; i >= 0; i-- {
		b.WriteString(r.Symbols[i])
		b.WriteString(" ")
	}
	kind := "Adjusted Close"
	if r.Selection == SelectionBollingerBands {
		kind = "Bollinger Bands"
	}
	fmt.Fprintf(&b, "%s (%d-%d)", kind, r.StartYear, r.StartYear+r.Years)
	return b.String()
}

// RunResult describes a finished chart run.
type RunResult struct {
	RunID      string
	Title      string
	OutputPath string
	CSVPaths   []string
	PriceRows  int
	BandRows   int
	Provider   string
	StartedAt  time.Time
	Duration   time.Duration
}
