package ai

import (
	"context"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
)

// HeuristicPredictor applies Classify to every record. It never fails.
type HeuristicPredictor struct{}

func NewHeuristicPredictor() *HeuristicPredictor {
	return &HeuristicPredictor{}
}

func (HeuristicPredictor) Predict(_ context.Context, records []domain.InventoryRecord) ([]domain.InventoryPrediction, error) {
	out := make([]domain.InventoryPrediction, 0, len(records))
	for _, r := range records {
		out = append(out, newPrediction(r, domain.PredictionSourceHeuristic))
	}
	return out, nil
}

var _ Predictor = (*HeuristicPredictor)(nil)
