// Package history records phase executions in a local SQLite database.
//
// History is an independent subsystem: if it fails to initialize the
// server keeps working and simply stops recording runs. Writes are
// best-effort — a failed insert never fails the run it describes.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Run is one recorded phase execution.
type Run struct {
	ID         string `json:"id"`
	Phase      string `json:"phase"`
	Mode       string `json:"mode"`
	Status     string `json:"status"`
	ExitCode   int    `json:"exit_code"`
	TimedOut   bool   `json:"timed_out"`
	StderrTail string `json:"stderr_tail,omitempty"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
}

// Config holds store settings.
type Config struct {
	// Path is the database file location.
	Path string
}

// Store is the SQLite-backed run log. Safe for concurrent use —
// database/sql serializes access through its connection pool.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the run-history database.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history: database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := openDB("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			phase        TEXT NOT NULL,
			mode         TEXT NOT NULL,
			status       TEXT NOT NULL,
			exit_code    INTEGER NOT NULL,
			timed_out    INTEGER NOT NULL DEFAULT 0,
			stderr_tail  TEXT NOT NULL DEFAULT '',
			started_at   TEXT NOT NULL,
			duration_ms  INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_phase_started
			ON runs(phase, started_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Record inserts one run.
func (s *Store) Record(run Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, phase, mode, status, exit_code, timed_out, stderr_tail, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Phase, run.Mode, run.Status, run.ExitCode,
		boolToInt(run.TimedOut), run.StderrTail, run.StartedAt, run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("history: record run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns the latest runs, newest first. An empty phase means
// all phases. Limit defaults to 20 and is capped at 200.
func (s *Store) Recent(phase string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	query := `
		SELECT id, phase, mode, status, exit_code, timed_out, stderr_tail, started_at, duration_ms
		FROM runs`
	args := []any{}
	if phase != "" {
		query += " WHERE phase = ?"
		args = append(args, phase)
	}
	query += " ORDER BY started_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var timedOut int
		if err := rows.Scan(&r.ID, &r.Phase, &r.Mode, &r.Status, &r.ExitCode,
			&timedOut, &r.StderrTail, &r.StartedAt, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.TimedOut = timedOut != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Last returns the most recent run for a phase, or nil if the phase
// has never run.
func (s *Store) Last(phase string) (*Run, error) {
	runs, err := s.Recent(phase, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
