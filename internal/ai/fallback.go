package ai

import (
	"context"
	"errors"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// FallbackPredictor answers from primary and switches to fallback when the
// remote side is unavailable. Cancellation of the caller's context and any
// other error are returned as is.
type FallbackPredictor struct {
	primary  Predictor
	fallback Predictor
}

func NewFallbackPredictor(primary, fallback Predictor) *FallbackPredictor {
	return &FallbackPredictor{primary: primary, fallback: fallback}
}

func (p *FallbackPredictor) Predict(ctx context.Context, records []domain.InventoryRecord) ([]domain.InventoryPrediction, error) {
	preds, err := p.primary.Predict(ctx, records)
	if err == nil {
		countPredictions(preds)
		return preds, nil
	}
	if ctx.Err() != nil || !errors.Is(err, domain.ErrRemoteUnavailable) {
		return nil, err
	}

	log.Warn().Err(err).Int("records", len(records)).Msg("AI service unavailable, using heuristic predictions")
	metrics.PredictorFallbacks.Inc()

	preds, err = p.fallback.Predict(ctx, records)
	if err != nil {
		return nil, err
	}
	countPredictions(preds)
	return preds, nil
}

func countPredictions(preds []domain.InventoryPrediction) {
	bySource := make(map[string]int)
	for _, p := range preds {
		bySource[p.Source]++
	}
	for source, n := range bySource {
		metrics.Predictions.WithLabelValues(source).Add(float64(n))
	}
}

var _ Predictor = (*FallbackPredictor)(nil)
