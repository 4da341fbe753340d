package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"BollingerChart/internal/model"
	"BollingerChart/internal/notifier"
	"BollingerChart/internal/pipeline"
	"BollingerChart/internal/recorder"
)

// recentRunsLimit caps the /runs reply.
const recentRunsLimit = 10

// Scheduler re-renders the configured chart on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *pipeline.Pipeline
	Recorder recorder.Recorder
	Request  model.ChartRequest
	Ctx      context.Context

	// held for the whole of a pipeline run; all runs write the same file
	runMu sync.Mutex
}

// NewScheduler creates a new Scheduler. Cron specs take a leading seconds field.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, rec recorder.Recorder, req model.ChartRequest) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Pipeline: p,
		Recorder: rec,
		Request:  req,
		Ctx:      ctx,
	}
}

// Register adds the chart job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.renderTask); err != nil {
		return fmt.Errorf("%w: register chart task %q: %v", model.ErrConfiguration, spec, err)
	}
	log.WithField("cron", spec).Info("chart task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.runMu.Lock()
	s.runMu.Unlock()
	log.Info("scheduler stopped")
}

// RunNow renders the chart immediately, waiting for any run in progress.
func (s *Scheduler) RunNow() (*model.RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.Pipeline.Run(s.Ctx, s.Request)
}

// TryRunAsync starts a run in the background unless one is in progress.
// It reports whether a run was started.
func (s *Scheduler) TryRunAsync() bool {
	if !s.runMu.TryLock() {
		return false
	}
	go func() {
		defer s.runMu.Unlock()
		// failures are logged, recorded and reported by the pipeline
		_, _ = s.Pipeline.Run(s.Ctx, s.Request)
	}()
	return true
}

func (s *Scheduler) renderTask() {
	log.Info("running scheduled chart task")
	_, _ = s.RunNow()
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "生成图表", "/chart":
		if !s.TryRunAsync() {
			return "⏳ 图表正在生成中, 请稍后再试"
		}
		return fmt.Sprintf("⏳ 正在生成 %s", s.Request.Title())
	case "最近运行", "/runs":
		runs, err := s.Recorder.RecentRuns(recentRunsLimit)
		if err != nil {
			log.WithError(err).Error("load recent runs")
			return "❌ 读取运行记录失败"
		}
		return notifier.FormatRecentRuns(runs)
	default:
		return "可用命令:\n• 生成图表 (/chart)\n• 最近运行 (/runs)"
	}
}
