package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordRun(&RunRecord{
		ID: "a", StartedAt: base, Symbols: "SPY", Selection: "line", Style: "clean",
		Provider: "yahoo", PriceRows: 1258, OutputPath: "graphs/SPY.pdf", Duration: 1500 * time.Millisecond,
	}))
	require.NoError(t, r.RecordRun(&RunRecord{
		ID: "b", StartedAt: base.Add(time.Hour), Symbols: "SPY,QQQ", Selection: "bollinger_bands",
		Style: "professional", Provider: "yahoo", Error: "fetch stage: data fetch failed",
	}))

	runs, err := r.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID, "newest first")
	assert.Equal(t, "fetch stage: data fetch failed", runs[0].Error)
	assert.Equal(t, 1258, runs[1].PriceRows)
	assert.Equal(t, 1500*time.Millisecond, runs[1].Duration)
	assert.True(t, runs[1].StartedAt.Equal(base))

	runs, err = r.RecentRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteRecorder_DuplicateID(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	rec := &RunRecord{ID: "same", StartedAt: time.Now(), Symbols: "SPY"}
	require.NoError(t, r.RecordRun(rec))
	assert.Error(t, r.RecordRun(rec))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&RunRecord{ID: "x"}))
	runs, err := r.RecentRuns(5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, r.Close())
}
