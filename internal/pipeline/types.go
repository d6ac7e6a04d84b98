package pipeline

import (
	"context"
	"time"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
)

// BatchSink persists one contiguous batch of records in a single bulk write.
type BatchSink interface {
	SaveBatch(ctx context.Context, records []domain.InventoryRecord) error
}

// DefaultBatchSize is the number of records per bulk write.
const DefaultBatchSize = 1000

// RunStatus represents the current state of an ingest run
type RunStatus string

const (
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// IngestRun tracks a single upload or import from parse to final batch.
type IngestRun struct {
	ID           string     `json:"id" db:"id"`
	Source       string     `json:"source" db:"source"`
	Status       RunStatus  `json:"status" db:"status"`
	RowsRead     int        `json:"rowsRead" db:"rows_read"`
	RowsSkipped  int        `json:"rowsSkipped" db:"rows_skipped"`
	RecordsSaved int        `json:"recordsSaved" db:"records_saved"`
	Truncated    bool       `json:"truncated" db:"truncated"`
	StartedAt    time.Time  `json:"startedAt" db:"started_at"`
	CompletedAt  *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	ErrorMessage string     `json:"errorMessage,omitempty" db:"error_message"`
}

// Finish stamps the run with its terminal status.
func (r *IngestRun) Finish(err error, at time.Time) {
	r.CompletedAt = &at
	if err != nil {
		r.Status = StatusFailed
		r.ErrorMessage = err.Error()
		return
	}
	r.Status = StatusCompleted
}

// RunRecorder stores ingest run history.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *IngestRun) error
	UpdateRun(ctx context.Context, run *IngestRun) error
	ListRuns(ctx context.Context, limit int) ([]IngestRun, error)
}
