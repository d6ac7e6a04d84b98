package pipeline

import (
	"context"
	"fmt"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// BatchWriter splits records into contiguous fixed-size batches and hands
// them to the sink one after another.
type BatchWriter struct {
	sink      BatchSink
	batchSize int
}

func NewBatchWriter(sink BatchSink, batchSize int) *BatchWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchWriter{sink: sink, batchSize: batchSize}
}

// WriteAll persists records in order and returns how many were saved. On a
// failed batch it stops; the batches before it stay committed and the
// returned count covers only those.
func (w *BatchWriter) WriteAll(ctx context.Context, records []domain.InventoryRecord) (int, error) {
	total := len(records)
	if total == 0 {
		return 0, nil
	}

	saved := 0
	for start := 0; start < total; start += w.batchSize {
		end := start + w.batchSize
		if end > total {
			end = total
		}
		batchNo := start/w.batchSize + 1

		if err := w.sink.SaveBatch(ctx, records[start:end]); err != nil {
			return saved, fmt.Errorf("failed to save batch %d (records %d-%d): %w", batchNo, start+1, end, err)
		}
		saved = end
		metrics.BatchesWritten.Inc()

		log.Info().
			Int("batch", batchNo).
			Int("saved", saved).
			Int("total", total).
			Msg("saved inventory batch")
	}

	return saved, nil
}
