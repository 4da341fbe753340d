package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"BollingerChart/internal/layout"
	"BollingerChart/internal/model"
)

// Font sizes in points.
const (
	titleFontSize = 25
	notesFontSize = 16
	tickFontSize  = 20
	labelFontSize = 24
)

// Horizontal offset of the right-edge symbol label, in XIncrements.
const (
	lineLabelShift = 0.2
	bandLabelShift = 0.1
)

// SupportedFormats lists the output extensions the renderer can write.
var SupportedFormats = []string{"pdf", "png", "svg", "eps", "jpg", "jpeg", "tif", "tiff"}

var guideColor = color.RGBA{A: 84}

// Figure is a fully assembled chart that has not been written yet.
type Figure struct {
	Plot        *plot.Plot
	Series      []*plotter.Line // one per drawn price or band line
	Guides      []*plotter.Line // dashed horizontal guides (clean style only)
	Labels      *plotter.Labels // right-edge symbol names
	Annotations *plotter.Labels // title and notes
}

// Renderer draws charts to files.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer with a 12x9 inch canvas.
func NewRenderer() *Renderer {
	return &Renderer{Width: 12 * vg.Inch, Height: 9 * vg.Inch}
}

// OutputPath is where a request's chart is written.
func OutputPath(req model.ChartRequest) string {
	return filepath.Join(req.OutputDir, req.Title()+"."+strings.ToLower(req.Format))
}

// Render builds the chart for req and writes it to OutputPath(req). bands is
// required for band charts and ignored for line charts.
func (r *Renderer) Render(req model.ChartRequest, series *model.PriceSeries, bands *model.BandSeries, l *model.Layout) (string, error) {
	fig, err := Build(req, series, bands, l)
	if err != nil {
		return "", err
	}

	path := OutputPath(req)
	info, err := os.Stat(req.OutputDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: output directory %q does not exist", model.ErrRender, req.OutputDir)
	}
	if err := fig.Plot.Save(r.Width, r.Height, path); err != nil {
		return "", fmt.Errorf("%w: save %s: %v", model.ErrRender, path, err)
	}
	log.WithFields(log.Fields{"path": path, "selection": req.Selection, "style": req.Style}).Info("chart written")
	return path, nil
}

// Build assembles the chart for req without writing it.
func Build(req model.ChartRequest, series *model.PriceSeries, bands *model.BandSeries, l *model.Layout) (*Figure, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty price series", model.ErrRender)
	}

	p := plot.New()
	fig := &Figure{Plot: p}
	applyStyle(p, req.Style)

	if req.Style == model.StyleClean {
		guides, err := guideLines(l)
		if err != nil {
			return nil, err
		}
		fig.Guides = guides
		for _, g := range guides {
			p.Add(g)
		}
	}

	var yLow, yHigh, labelShift float64
	switch req.Selection {
	case model.SelectionLine:
		if err := addPriceLines(fig, series, 2); err != nil {
			return nil, err
		}
		yLow, yHigh, labelShift = l.YMin-1, l.YMax, lineLabelShift
	case model.SelectionBollingerBands:
		if bands.Len() == 0 {
			return nil, fmt.Errorf("%w: nothing to plot, band series is empty", model.ErrInsufficientHistory)
		}
		if err := addPriceLines(fig, primaryOnly(series), 1.5); err != nil {
			return nil, err
		}
		if err := addBandLines(fig, bands); err != nil {
			return nil, err
		}
		var err error
		if yLow, yHigh, err = layout.BandView(bands); err != nil {
			return nil, err
		}
		labelShift = bandLabelShift
	default:
		return nil, fmt.Errorf("%w: unknown selection %q", model.ErrConfiguration, req.Selection)
	}

	labelX := layout.DateNum(l.XMax) + l.XIncrement*labelShift
	if err := addSymbolLabels(fig, series, req.Selection, labelX); err != nil {
		return nil, err
	}
	if err := addAnnotations(fig, req, l); err != nil {
		return nil, err
	}

	setView(p, l, yLow, yHigh, labelX, len(strings.Split(req.Notes, "\n")))
	p.X.Tick.Marker = constantTicks(layout.XTicks(l))
	p.Y.Tick.Marker = constantTicks(layout.YTicks(l))
	return fig, nil
}

// applyStyle sets the chart chrome. Clean hides every axis line and tick
// mark; professional keeps the left and bottom axes with ticks.
func applyStyle(p *plot.Plot, style model.Style) {
	p.X.Tick.Label.Font.Size = vg.Points(tickFontSize)
	p.Y.Tick.Label.Font.Size = vg.Points(tickFontSize)
	p.X.Padding = vg.Points(20)
	p.Y.Padding = vg.Points(20)

	if style == model.StyleClean {
		for _, ax := range []*plot.Axis{&p.X, &p.Y} {
			ax.LineStyle.Width = 0
			ax.Tick.LineStyle.Width = 0
			ax.Tick.Length = 0
		}
	}
}

func guideLines(l *model.Layout) ([]*plotter.Line, error) {
	x0, x1 := layout.DateNum(l.XMin), layout.DateNum(l.XMax)
	guides := make([]*plotter.Line, 0, len(l.YRange))
	for _, y := range l.YRange {
		g, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
		if err != nil {
			return nil, fmt.Errorf("%w: guide at %v: %v", model.ErrRender, y, err)
		}
		g.LineStyle.Width = vg.Points(0.5)
		g.LineStyle.Color = guideColor
		g.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		guides = append(guides, g)
	}
	return guides, nil
}

func addPriceLines(fig *Figure, series *model.PriceSeries, width float64) error {
	for rank, symbol := range series.Symbols {
		xys := make(plotter.XYs, 0, series.Len())
		for r, d := range series.Dates {
			v := series.Values[rank][r]
			if math.IsNaN(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: layout.DateNum(d), Y: v})
		}
		if len(xys) == 0 {
			log.WithField("symbol", symbol).Warn("no data to draw, skipping line")
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("%w: line for %s: %v", model.ErrRender, symbol, err)
		}
		line.LineStyle.Width = vg.Points(width)
		line.LineStyle.Color = SeriesColor(rank)
		fig.Series = append(fig.Series, line)
		fig.Plot.Add(line)
	}
	return nil
}

func addBandLines(fig *Figure, bands *model.BandSeries) error {
	for _, band := range [][]float64{bands.Upper, bands.Lower} {
		xys := make(plotter.XYs, bands.Len())
		for i, d := range bands.Dates {
			xys[i] = plotter.XY{X: layout.DateNum(d), Y: band[i]}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("%w: band line: %v", model.ErrRender, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = BandColor()
		fig.Series = append(fig.Series, line)
		fig.Plot.Add(line)
	}
	return nil
}

// addSymbolLabels writes each symbol name beside its last value. Band
// charts only label the primary symbol.
func addSymbolLabels(fig *Figure, series *model.PriceSeries, sel model.Selection, x float64) error {
	var xyl plotter.XYLabels
	var colors []color.RGBA
	for rank, symbol := range series.Symbols {
		if sel == model.SelectionBollingerBands && rank > 0 {
			break
		}
		v, _, ok := series.Last(rank)
		if !ok {
			continue
		}
		xyl.XYs = append(xyl.XYs, plotter.XY{X: x, Y: v})
		xyl.Labels = append(xyl.Labels, symbol)
		colors = append(colors, SeriesColor(rank))
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return fmt.Errorf("%w: symbol labels: %v", model.ErrRender, err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = colors[i]
		labels.TextStyle[i].Font.Size = vg.Points(labelFontSize)
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	fig.Labels = labels
	fig.Plot.Add(labels)
	return nil
}

// addAnnotations places the title above the top guide and the notes block
// below-left of the data, using the layout's offsets.
func addAnnotations(fig *Figure, req model.ChartRequest, l *model.Layout) error {
	x0, x1 := layout.DateNum(l.XMin), layout.DateNum(l.XMax)
	xyl := plotter.XYLabels{
		XYs:    plotter.XYs{{X: (x0 + x1) / 2, Y: l.YMax + l.TitleOffset}},
		Labels: []string{req.Title()},
	}
	if req.Notes != "" {
		xyl.XYs = append(xyl.XYs, plotter.XY{X: x0 - l.NotesXOffset, Y: l.YMin - l.NotesYOffset})
		xyl.Labels = append(xyl.Labels, req.Notes)
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return fmt.Errorf("%w: annotations: %v", model.ErrRender, err)
	}
	labels.TextStyle[0].Font.Size = vg.Points(titleFontSize)
	labels.TextStyle[0].XAlign = draw.XCenter
	if len(labels.TextStyle) > 1 {
		labels.TextStyle[1].Font.Size = vg.Points(notesFontSize)
		labels.TextStyle[1].YAlign = draw.YTop
	}
	fig.Annotations = labels
	fig.Plot.Add(labels)
	return nil
}

// setView fixes the axis ranges. Annotations sit outside the data bounds,
// so the view is widened until they fit on the canvas.
func setView(p *plot.Plot, l *model.Layout, yLow, yHigh, labelX float64, noteLines int) {
	titleY := l.YMax + l.TitleOffset
	notesY := l.YMin - l.NotesYOffset
	notesX := layout.DateNum(l.XMin) - l.NotesXOffset

	top := math.Max(yHigh, titleY)
	bottom := math.Min(yLow, notesY)
	span := top - bottom
	if span <= 0 {
		span = l.YIncrement
	}
	p.Y.Min = bottom - span*0.035*float64(noteLines)
	p.Y.Max = top + span*0.06

	left := math.Min(layout.DateNum(l.XMin), notesX)
	width := labelX - left
	if width <= 0 {
		width = l.XIncrement
	}
	p.X.Min = left
	p.X.Max = labelX + width*0.08
}

func constantTicks(ticks []layout.Tick) plot.ConstantTicks {
	out := make(plot.ConstantTicks, len(ticks))
	for i, t := range ticks {
		out[i] = plot.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}

func primaryOnly(series *model.PriceSeries) *model.PriceSeries {
	return &model.PriceSeries{
		Symbols: series.Symbols[:1],
		Dates:   series.Dates,
		Values:  series.Values[:1],
	}
}
