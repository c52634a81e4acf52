// Package store keeps run history in SQLite: one row per run, the reports a
// run produced, and an end-of-run snapshot of its most active concepts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"cognerd/internal/logging"
	"cognerd/internal/memory"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is one invocation of the control loop.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Cycles     int64
	Config     string
}

// Finished reports whether FinishRun was called.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// ReportRecord is a persisted IN/OUT/ANSWER line.
type ReportRecord struct {
	Cycle int64
	Kind  string
	Text  string
}

// ConceptRecord is a concept's budget and table sizes at snapshot time.
type ConceptRecord struct {
	Key        string
	Priority   float64
	Durability float64
	Quality    float64
	Beliefs    int
	Questions  int
	TaskLinks  int
	TermLinks  int
}

// Store is a SQLite-backed run history.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("Run history opened at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			finished_at INTEGER,
			cycles INTEGER NOT NULL DEFAULT 0,
			config TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			cycle INTEGER NOT NULL,
			kind TEXT NOT NULL,
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_run ON reports(run_id)`,
		`CREATE TABLE IF NOT EXISTS concepts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			key TEXT NOT NULL,
			priority REAL NOT NULL,
			durability REAL NOT NULL,
			quality REAL NOT NULL,
			beliefs INTEGER NOT NULL DEFAULT 0,
			questions INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, key)
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// BeginRun records a new run and returns its id.
func (s *Store) BeginRun(ctx context.Context, config string) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, config) VALUES (?, ?, ?)`,
		id, time.Now().UnixNano(), config)
	if err != nil {
		return "", fmt.Errorf("failed to begin run: %w", err)
	}
	logging.StoreDebug("Began run %s", id)
	return id, nil
}

// FinishRun stamps the run's end time and cycle count.
func (s *Store) FinishRun(ctx context.Context, runID string, cycles int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, cycles = ? WHERE id = ?`,
		time.Now().UnixNano(), cycles, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// AppendReport stores one report line.
func (s *Store) AppendReport(ctx context.Context, runID string, r memory.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (run_id, cycle, kind, text) VALUES (?, ?, ?, ?)`,
		runID, r.Time, r.Kind.String(), r.Sentence.Key())
	if err != nil {
		return fmt.Errorf("failed to append report: %w", err)
	}
	return nil
}

// Reports returns a run's reports in the order they were produced.
func (s *Store) Reports(ctx context.Context, runID string) ([]ReportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT cycle, kind, text FROM reports WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRecord
	for rows.Next() {
		var r ReportRecord
		if err := rows.Scan(&r.Cycle, &r.Kind, &r.Text); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveSnapshot replaces the concept snapshot of a run.
func (s *Store) SaveSnapshot(ctx context.Context, runID string, concepts []ConceptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM concepts WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO concepts
		(run_id, key, priority, durability, quality, beliefs, questions, task_links, term_links)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot: %w", err)
	}
	defer stmt.Close()

	for _, c := range concepts {
		if _, err := stmt.ExecContext(ctx, runID, c.Key, c.Priority, c.Durability, c.Quality,
			c.Beliefs, c.Questions, c.TaskLinks, c.TermLinks); err != nil {
			return fmt.Errorf("failed to save concept %s: %w", c.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	logging.StoreDebug("Saved %d concepts for run %s", len(concepts), runID)
	return nil
}

// LoadSnapshot returns a run's concepts, highest priority first.
func (s *Store) LoadSnapshot(ctx context.Context, runID string) ([]ConceptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, priority, durability, quality,
		beliefs, questions, task_links, term_links
		FROM concepts WHERE run_id = ? ORDER BY priority DESC, key`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var out []ConceptRecord
	for rows.Next() {
		var c ConceptRecord
		if err := rows.Scan(&c.Key, &c.Priority, &c.Durability, &c.Quality,
			&c.Beliefs, &c.Questions, &c.TaskLinks, &c.TermLinks); err != nil {
			return nil, fmt.Errorf("failed to scan concept: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, cycles, config FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			started  int64
			finished sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Cycles, &r.Config); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, started)
		if finished.Valid {
			r.FinishedAt = time.Unix(0, finished.Int64)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Reporter persists every report of a run. Write failures are logged and
// do not interrupt the cycle.
func (s *Store) Reporter(runID string) memory.Reporter {
	return memory.ReporterFunc(func(r memory.Report) {
		if err := s.AppendReport(context.Background(), runID, r); err != nil {
			logging.StoreError("%v", err)
		}
	})
}
