package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"BollingerChart/internal/calculator"
	"BollingerChart/internal/chart"
	"BollingerChart/internal/collector"
	"BollingerChart/internal/export"
	"BollingerChart/internal/layout"
	"BollingerChart/internal/model"
	"BollingerChart/internal/notifier"
	"BollingerChart/internal/recorder"
)

// Notifier delivers run reports. TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Pipeline runs fetch, bands, layout, render and export for one request.
type Pipeline struct {
	Collector *collector.Collector
	Renderer  *chart.Renderer
	Recorder  recorder.Recorder
	Notifier  Notifier // optional
	now       func() time.Time
}

// New creates a pipeline. A nil recorder records nothing.
func New(col *collector.Collector, rec recorder.Recorder, n Notifier) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Pipeline{
		Collector: col,
		Renderer:  chart.NewRenderer(),
		Recorder:  rec,
		Notifier:  n,
		now:       time.Now,
	}
}

// Run executes one chart run. Every returned error is a *model.StageError.
func (p *Pipeline) Run(ctx context.Context, req model.ChartRequest) (*model.RunResult, error) {
	res := &model.RunResult{
		RunID:     uuid.NewString(),
		Title:     req.Title(),
		Provider:  p.Collector.Fetcher.Name(),
		StartedAt: p.now(),
	}
	logger := log.WithFields(log.Fields{"run_id": res.RunID, "title": res.Title})
	logger.Info("chart run started")

	err := p.run(ctx, req, res)
	res.Duration = p.now().Sub(res.StartedAt)
	p.record(req, res, err)

	if err != nil {
		logger.WithError(err).Error("chart run failed")
		p.notify(ctx, notifier.FormatRunFailure(req, err))
		return nil, err
	}
	logger.WithFields(log.Fields{"path": res.OutputPath, "duration": res.Duration}).Info("chart run finished")
	p.notify(ctx, notifier.FormatRunReport(res))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, req model.ChartRequest, res *model.RunResult) error {
	if _, err := model.ParseSelection(string(req.Selection)); err != nil {
		return model.Stage(model.StageConfig, err)
	}
	if _, err := model.ParseStyle(string(req.Style)); err != nil {
		return model.Stage(model.StageConfig, err)
	}
	if req.Years <= 0 {
		return model.Stage(model.StageConfig, fmt.Errorf("%w: years must be positive", model.ErrConfiguration))
	}

	series, err := p.Collector.Collect(ctx, req.Symbols, req.StartDate(), req.EndDate())
	if err != nil {
		return model.Stage(model.StageFetch, err)
	}
	res.PriceRows = series.Len()

	var bands *model.BandSeries
	if req.Selection == model.SelectionBollingerBands {
		window, k := req.Window, req.Multiplier
		if window == 0 {
			window = calculator.DefaultWindow
		}
		if k == 0 {
			k = calculator.DefaultMultiplier
		}
		if bands, err = calculator.BollingerBands(series, window, k); err != nil {
			return model.Stage(model.StageBands, err)
		}
		res.BandRows = bands.Len()
	}

	l, err := layout.Compute(series.Primary(), series.Dates, req.Years, req.Style)
	if err != nil {
		return model.Stage(model.StageLayout, err)
	}

	if res.OutputPath, err = p.Renderer.Render(req, series, bands, l); err != nil {
		return model.Stage(model.StageRender, err)
	}

	if req.ExportCSV {
		if res.CSVPaths, err = export.WriteCSV(req.OutputDir, res.Title, series, bands); err != nil {
			return model.Stage(model.StageExport, err)
		}
	}
	return nil
}

func (p *Pipeline) record(req model.ChartRequest, res *model.RunResult, runErr error) {
	rec := &recorder.RunRecord{
		ID:         res.RunID,
		StartedAt:  res.StartedAt,
		Symbols:    strings.Join(req.Symbols, ","),
		Selection:  string(req.Selection),
		Style:      string(req.Style),
		Provider:   res.Provider,
		PriceRows:  res.PriceRows,
		BandRows:   res.BandRows,
		OutputPath: res.OutputPath,
		Duration:   res.Duration,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if err := p.Recorder.RecordRun(rec); err != nil {
		log.WithError(err).Error("record run")
	}
}

func (p *Pipeline) notify(ctx context.Context, text string) {
	if p.Notifier == nil {
		return
	}
	if err := p.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.WithError(err).Error("send notification")
	}
}
