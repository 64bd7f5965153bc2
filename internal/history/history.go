// Package history records sync runs in PostgreSQL. It is optional: runs work
// identically without a database, and callers are expected to warn and
// continue when the store is unreachable.
package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and ensures the run table exists.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sync_runs (
			id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT 'running',
			courses_fetched INT NOT NULL DEFAULT 0,
			assignments_seen INT NOT NULL DEFAULT 0,
			new_assignments INT NOT NULL DEFAULT 0,
			rules_created INT NOT NULL DEFAULT 0,
			tasks_synced INT NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("failed to create sync_runs table: %w", err)
	}
	return nil
}

// CreateRun inserts a new run record with the given ID.
func (s *Store) CreateRun(ctx context.Context, runID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, status) VALUES ($1, 'running')`, runID)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// Counts holds the per-stage totals recorded when a run finishes.
type Counts struct {
	CoursesFetched  int
	AssignmentsSeen int
	NewAssignments  int
	RulesCreated    int
	TasksSynced     int
}

// CompleteRun marks a run as finished and records its stage counts.
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, status string, counts Counts) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sync_runs
		 SET status = $1, completed_at = NOW(),
		     courses_fetched = $2, assignments_seen = $3,
		     new_assignments = $4, rules_created = $5, tasks_synced = $6
		 WHERE id = $7`,
		status, counts.CoursesFetched, counts.AssignmentsSeen,
		counts.NewAssignments, counts.RulesCreated, counts.TasksSynced, runID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}
