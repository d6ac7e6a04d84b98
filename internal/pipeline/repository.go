package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

const ingestRunsSchema = `
CREATE TABLE IF NOT EXISTS ingest_runs (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	status        TEXT NOT NULL,
	rows_read     INTEGER NOT NULL DEFAULT 0,
	rows_skipped  INTEGER NOT NULL DEFAULT 0,
	records_saved INTEGER NOT NULL DEFAULT 0,
	truncated     BOOLEAN NOT NULL DEFAULT FALSE,
	started_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ,
	error_message TEXT NOT NULL DEFAULT ''
)`

// Repository handles database operations for ingest run tracking
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new ingest run repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the ingest_runs table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, ingestRunsSchema); err != nil {
		return fmt.Errorf("failed to create ingest_runs table: %w", err)
	}
	return nil
}

// CreateRun inserts a new run record
func (r *Repository) CreateRun(ctx context.Context, run *IngestRun) error {
	query := `
		INSERT INTO ingest_runs (
			id, source, status, rows_read, rows_skipped,
			records_saved, truncated, started_at, error_message
		) VALUES (
			:id, :source, :status, :rows_read, :rows_skipped,
			:records_saved, :truncated, :started_at, :error_message
		)
	`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to create ingest run: %w", err)
	}
	return nil
}

// UpdateRun updates counters and status of an existing run
func (r *Repository) UpdateRun(ctx context.Context, run *IngestRun) error {
	query := `
		UPDATE ingest_runs
		SET status = :status, rows_read = :rows_read, rows_skipped = :rows_skipped,
		    records_saved = :records_saved, truncated = :truncated,
		    completed_at = :completed_at, error_message = :error_message
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to update ingest run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("ingest run %s: %w", run.ID, sql.ErrNoRows)
	}
	return nil
}

// ListRuns returns the most recent runs first
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, source, status, rows_read, rows_skipped, records_saved,
		       truncated, started_at, completed_at, error_message
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	runs := make([]IngestRun, 0)
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list ingest runs: %w", err)
	}
	return runs, nil
}

var _ RunRecorder = (*Repository)(nil)

// MemoryRecorder keeps run history in process, newest last.
type MemoryRecorder struct {
	mu   sync.RWMutex
	runs []IngestRun
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) CreateRun(_ context.Context, run *IngestRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *MemoryRecorder) UpdateRun(_ context.Context, run *IngestRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == run.ID {
			m.runs[i] = *run
			return nil
		}
	}
	return fmt.Errorf("ingest run %s: %w", run.ID, sql.ErrNoRows)
}

func (m *MemoryRecorder) ListRuns(_ context.Context, limit int) ([]IngestRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	out := make([]IngestRun, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

var _ RunRecorder = (*MemoryRecorder)(nil)
