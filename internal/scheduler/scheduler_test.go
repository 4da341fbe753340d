package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BollingerChart/internal/collector"
	"BollingerChart/internal/model"
	"BollingerChart/internal/pipeline"
	"BollingerChart/internal/recorder"
)

// slowFetcher serves the same points for every symbol and tracks how many
// fetches overlap.
type slowFetcher struct {
	points   []model.PricePoint
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (f *slowFetcher) Name() string { return "slow" }

func (f *slowFetcher) FetchDailyAdjusted(_ context.Context, _ string, _, _ time.Time) ([]model.PricePoint, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(f.delay)
	return f.points, nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *recorder.SQLiteRecorder) {
	t.Helper()
	return newTestSchedulerWith(t, nil)
}

func newTestSchedulerWith(t *testing.T, fetcher collector.Fetcher) (*Scheduler, *recorder.SQLiteRecorder) {
	t.Helper()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if fetcher == nil {
		fetcher = &collector.MockFetcher{Data: map[string][]model.PricePoint{
			"SPY": collector.GenerateMockPoints(start, 366, func(i int) float64 { return 300 + float64(i%40) }),
		}}
	}
	rec, err := recorder.NewSQLiteRecorder(t.TempDir() + "/runs.db")
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	req := model.ChartRequest{
		Symbols:   []string{"SPY"},
		StartYear: 2020,
		Years:     1,
		Selection: model.SelectionLine,
		Style:     model.StyleProfessional,
		OutputDir: t.TempDir(),
		Format:    "svg",
	}
	p := pipeline.New(collector.NewCollector(fetcher), rec, nil)
	return NewScheduler(context.Background(), p, rec, req), rec
}

func TestRegister_RejectsBadSpec(t *testing.T) {
	s, _ := newTestScheduler(t)
	err := s.Register("every tuesday")
	assert.ErrorIs(t, err, model.ErrConfiguration)
	assert.NoError(t, s.Register("0 30 18 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestRunNow_RecordsRun(t *testing.T) {
	s, rec := newTestScheduler(t)
	res, err := s.RunNow()
	require.NoError(t, err)
	assert.FileExists(t, res.OutputPath)

	runs, err := rec.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(t)

	assert.Contains(t, s.HandleCommand("/help"), "/chart")
	assert.Equal(t, "暂无运行记录", s.HandleCommand("/runs"))

	_, err := s.RunNow()
	require.NoError(t, err)
	reply := s.HandleCommand("/runs")
	assert.Contains(t, reply, "SPY")
	assert.Contains(t, reply, "line/professional")
}

func TestHandleCommand_ChartRunsOneAtATime(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &slowFetcher{
		points: collector.GenerateMockPoints(start, 366, func(i int) float64 { return 300 + float64(i%40) }),
		delay:  100 * time.Millisecond,
	}
	s, rec := newTestSchedulerWith(t, f)

	assert.Contains(t, s.HandleCommand("/chart"), "正在生成")
	assert.Contains(t, s.HandleCommand("/chart"), "请稍后再试")
	assert.Contains(t, s.HandleCommand("/chart"), "请稍后再试")

	// waits for the background run before starting its own
	_, err := s.RunNow()
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.peak.Load())
	assert.Equal(t, int32(2), f.calls.Load())
	runs, err := rec.RecentRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunNow_Serialized(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &slowFetcher{
		points: collector.GenerateMockPoints(start, 366, func(i int) float64 { return 300 + float64(i%40) }),
		delay:  30 * time.Millisecond,
	}
	s, _ := newTestSchedulerWith(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RunNow()
			assert.NoError(t, err)
		}()
	}
	s.TryRunAsync()
	wg.Wait()
	// Stop also waits for a background run
	s.Stop()

	assert.Equal(t, int32(1), f.peak.Load())
}
