// Package history records memory gate benchmark runs in SQLite so results
// can be compared across configurations.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/gate"
)

// ErrNilReport is returned when Record is given no report.
var ErrNilReport = errors.New("cannot record nil report")

// Run is one recorded benchmark report.
type Run struct {
	ID         string
	RecordedAt time.Time
	Report     gate.Report
}

// Store persists benchmark runs.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens, creating if needed, the run history at path. path can be a
// file path or ":memory:".
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS benchmark_runs (
		id TEXT PRIMARY KEY,
		recorded_at DATETIME NOT NULL,
		seed INTEGER NOT NULL,
		total_queries INTEGER NOT NULL,
		unique_queries INTEGER NOT NULL,
		memory_capacity INTEGER NOT NULL,
		stability_threshold REAL NOT NULL,
		memory_hits INTEGER NOT NULL,
		gated_inferences INTEGER NOT NULL,
		hit_rate REAL NOT NULL,
		tokens_per_inference INTEGER NOT NULL,
		ms_per_inference INTEGER NOT NULL,
		token_savings INTEGER NOT NULL,
		ms_savings INTEGER NOT NULL,
		final_size INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		report TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_benchmark_runs_recorded_at ON benchmark_runs(recorded_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Record stores r under a new ID. The summary columns exist for ad hoc
// queries; the full report is kept as JSON and is what List returns.
func (s *Store) Record(ctx context.Context, r *gate.Report) (Run, error) {
	if r == nil {
		return Run{}, ErrNilReport
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return Run{}, fmt.Errorf("failed to encode report: %w", err)
	}

	run := Run{
		ID:         uuid.NewString(),
		RecordedAt: s.now().UTC(),
		Report:     *r,
	}

	query := `INSERT INTO benchmark_runs (
		id, recorded_at, seed, total_queries, unique_queries, memory_capacity,
		stability_threshold, memory_hits, gated_inferences, hit_rate,
		tokens_per_inference, ms_per_inference, token_savings, ms_savings,
		final_size, duration_ns, report
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.RecordedAt, int64(r.Seed), r.TotalQueries, r.UniqueQueries, r.MemoryCapacity,
		r.StabilityThreshold, r.MemoryHits, r.GatedInferences, r.HitRate,
		r.TokensPerInference, r.MsPerInference, r.TokenSavings, r.MsSavings,
		r.Stats.Size, int64(r.Duration), string(payload),
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	return run, nil
}

// List returns up to limit runs, most recent first. A non-positive limit
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, recorded_at, report
	FROM benchmark_runs ORDER BY recorded_at DESC, rowid DESC`

	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			payload string
		)
		if err := rows.Scan(&run.ID, &run.RecordedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &run.Report); err != nil {
			return nil, fmt.Errorf("failed to decode run %s: %w", run.ID, err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
