// Package store persists benchmark runs in a single-file SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"benchd/internal/fsutil"
	"benchd/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	backend       TEXT NOT NULL,
	model         TEXT NOT NULL,
	started_unix  INTEGER NOT NULL,
	total_seconds REAL NOT NULL,
	num_requests  INTEGER NOT NULL,
	request_rate  REAL NOT NULL,
	seed          INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS requests (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	prompt_tokens   INTEGER NOT NULL,
	output_tokens   INTEGER NOT NULL,
	latency_seconds REAL NOT NULL,
	error           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_requests_run ON requests(run_id);
`

// Store wraps the runs database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if p != ":memory:" {
		if err := fsutil.EnsureParentDir(p); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun inserts the run row and its request rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run types.Run, results []types.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, backend, model, started_unix, total_seconds, num_requests, request_rate, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Backend), run.Model, run.StartedUnix, run.TotalSeconds, run.NumRequests, run.RequestRate, run.Seed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO requests (run_id, prompt_tokens, output_tokens, latency_seconds, error) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, run.ID, r.PromptTokens, r.OutputTokens, r.LatencySeconds, r.Err); err != nil {
			return fmt.Errorf("insert request: %w", err)
		}
	}
	return tx.Commit()
}

// ListRuns returns all runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]types.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, backend, model, started_unix, total_seconds, num_requests, request_rate, seed
		 FROM runs ORDER BY started_unix DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var r types.Run
		var backend string
		if err := rows.Scan(&r.ID, &backend, &r.Model, &r.StartedUnix, &r.TotalSeconds, &r.NumRequests, &r.RequestRate, &r.Seed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Backend = types.Backend(backend)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadRun returns the run row and its per-request results.
func (s *Store) LoadRun(ctx context.Context, id string) (types.Run, []types.Result, error) {
	var run types.Run
	var backend string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, backend, model, started_unix, total_seconds, num_requests, request_rate, seed
		 FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &backend, &run.Model, &run.StartedUnix, &run.TotalSeconds, &run.NumRequests, &run.RequestRate, &run.Seed)
	if err == sql.ErrNoRows {
		return run, nil, runNotFoundError{id: id}
	}
	if err != nil {
		return run, nil, fmt.Errorf("query run: %w", err)
	}
	run.Backend = types.Backend(backend)

	rows, err := s.db.QueryContext(ctx,
		`SELECT prompt_tokens, output_tokens, latency_seconds, error FROM requests WHERE run_id = ?`, id)
	if err != nil {
		return run, nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var results []types.Result
	for rows.Next() {
		var r types.Result
		if err := rows.Scan(&r.PromptTokens, &r.OutputTokens, &r.LatencySeconds, &r.Err); err != nil {
			return run, nil, fmt.Errorf("scan request: %w", err)
		}
		results = append(results, r)
	}
	return run, results, rows.Err()
}

// NewRunRecord builds the Run row for an outcome that started at the given time.
func NewRunRecord(id string, backend types.Backend, model string, started time.Time, totalSeconds float64, numRequests int, rate float64, seed int64) types.Run {
	return types.Run{
		ID:           id,
		Backend:      backend,
		Model:        model,
		StartedUnix:  started.Unix(),
		TotalSeconds: totalSeconds,
		NumRequests:  numRequests,
		RequestRate:  rate,
		Seed:         seed,
	}
}
