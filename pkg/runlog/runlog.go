// Package runlog records pipeline step history to Postgres. Recording is
// optional and best-effort: an unconfigured or unreachable database never
// blocks a broadcast run.
package runlog

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one recorded step execution.
type Entry struct {
	RunID        string
	Step         string
	DurationMs   int64
	Success      bool
	Error        string
	SegmentCount int
	FailedCount  int
	Hostname     string
}

// Recorder writes step entries to Postgres.
type Recorder struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection and makes sure the history table exists.
func Connect(ctx context.Context, connString string) (*Recorder, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to run log database: %w", err)
	}

	r := &Recorder{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			id            BIGSERIAL PRIMARY KEY,
			run_id        TEXT NOT NULL,
			step          TEXT NOT NULL,
			duration_ms   BIGINT NOT NULL,
			success       BOOLEAN NOT NULL,
			error         TEXT,
			segment_count INTEGER NOT NULL DEFAULT 0,
			failed_count  INTEGER NOT NULL DEFAULT 0,
			hostname      TEXT,
			recorded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensuring run log schema: %w", err)
	}
	return nil
}

// Record inserts one step entry.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	if e.Hostname == "" {
		e.Hostname, _ = os.Hostname()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO pipeline_runs
			(run_id, step, duration_ms, success, error, segment_count, failed_count, hostname)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.RunID, e.Step, e.DurationMs, e.Success, e.Error,
		e.SegmentCount, e.FailedCount, e.Hostname)
	if err != nil {
		return fmt.Errorf("recording step %s: %w", e.Step, err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Recorder) Close() {
	r.pool.Close()
}
