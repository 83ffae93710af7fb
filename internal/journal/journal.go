package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists unify run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one confirmed unify run. Settings is a short human-readable
// snapshot of the effective flags.
type Run struct {
	ID        string
	TargetDir string
	OutDir    string
	Settings  string
	StartedAt time.Time
	Groups    int
	Skipped   int
	Failed    int
}

// GroupRecord is the persisted outcome of one feature group.
type GroupRecord struct {
	Key      string
	Sources  int
	Replaced int
	Status   string // "ok" or "error"
	Message  string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    target_dir  TEXT NOT NULL,
    out_dir     TEXT NOT NULL,
    settings    TEXT NOT NULL DEFAULT '',
    started_at  TEXT NOT NULL,
    groups      INTEGER NOT NULL,
    skipped     INTEGER NOT NULL,
    failed      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_groups (
    run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    key       TEXT NOT NULL,
    sources   INTEGER NOT NULL,
    replaced  INTEGER NOT NULL,
    status    TEXT NOT NULL,
    message   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_groups_run ON run_groups(run_id);
`

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun persists a run and its per-group outcomes in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, groups []GroupRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, target_dir, out_dir, settings, started_at, groups, skipped, failed)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.TargetDir,
		run.OutDir,
		run.Settings,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Groups,
		run.Skipped,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, g := range groups {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_groups (run_id, key, sources, replaced, status, message)
             VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, g.Key, g.Sources, g.Replaced, g.Status, g.Message,
		)
		if err != nil {
			return fmt.Errorf("insert group %q: %w", g.Key, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target_dir, out_dir, settings, started_at, groups, skipped, failed
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started string
		if err := rows.Scan(&run.ID, &run.TargetDir, &run.OutDir, &run.Settings, &started, &run.Groups, &run.Skipped, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, started); parseErr == nil {
			run.StartedAt = ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Groups returns the per-group outcomes recorded for a run.
func (s *Store) Groups(ctx context.Context, runID string) ([]GroupRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, sources, replaced, status, message
         FROM run_groups WHERE run_id = ? ORDER BY key`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run groups: %w", err)
	}
	defer rows.Close()

	var groups []GroupRecord
	for rows.Next() {
		var g GroupRecord
		if err := rows.Scan(&g.Key, &g.Sources, &g.Replaced, &g.Status, &g.Message); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
