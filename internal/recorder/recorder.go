package recorder

import "time"

// RunRecord is one chart run, successful or not.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	Symbols    string // comma separated, primary first
	Selection  string
	Style      string
	Provider   string
	PriceRows  int
	BandRows   int
	OutputPath string
	Error      string // empty on success
	Duration   time.Duration
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	RecentRuns(limit int) ([]RunRecord, error)
	Close() error
}
