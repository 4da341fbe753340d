package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chart_runs (
			id           TEXT PRIMARY KEY,
			started_at   INTEGER NOT NULL,
			symbols      TEXT NOT NULL,
			selection    TEXT,
			style        TEXT,
			provider     TEXT,
			price_rows   INTEGER,
			band_rows    INTEGER,
			output_path  TEXT,
			error        TEXT,
			duration_ms  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chart_runs_started ON chart_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO chart_runs
		(id, started_at, symbols, selection, style, provider,
		 price_rows, band_rows, output_path, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.StartedAt.UnixMilli(), rec.Symbols, rec.Selection, rec.Style, rec.Provider,
		rec.PriceRows, rec.BandRows, rec.OutputPath, rec.Error, rec.Duration.Milliseconds(),
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, started_at, symbols, selection, style, provider,
		price_rows, band_rows, output_path, error, duration_ms
		FROM chart_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedMs, durationMs int64
		if err := rows.Scan(&rec.ID, &startedMs, &rec.Symbols, &rec.Selection, &rec.Style, &rec.Provider,
			&rec.PriceRows, &rec.BandRows, &rec.OutputPath, &rec.Error, &durationMs); err != nil {
			return nil, err
		}
		rec.StartedAt = time.UnixMilli(startedMs)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
