package ai

import (
	"context"
	"fmt"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
)

// RemotePredictor asks the AI service for predictions. Identity fields always
// come from the local record; a status or recommendation the service leaves
// blank or unrecognized is filled in by Classify.
type RemotePredictor struct {
	client *Client
}

func NewRemotePredictor(client *Client) *RemotePredictor {
	return &RemotePredictor{client: client}
}

func (p *RemotePredictor) Predict(ctx context.Context, records []domain.InventoryRecord) ([]domain.InventoryPrediction, error) {
	resp, err := p.client.predict(ctx, records)
	if err != nil {
		return nil, err
	}
	if len(resp.Predictions) != len(records) {
		return nil, &ServiceError{
			Op:  "predict",
			Err: fmt.Errorf("%w: got %d predictions for %d records", errMalformedPredictions, len(resp.Predictions), len(records)),
		}
	}

	out := make([]domain.InventoryPrediction, len(records))
	for i, r := range records {
		out[i] = merge(newPrediction(r, domain.PredictionSourceRemote), resp.Predictions[i])
	}
	return out, nil
}

func merge(local domain.InventoryPrediction, remote remotePrediction) domain.InventoryPrediction {
	statusFromRemote := false
	if status, ok := domain.ParseStockStatus(remote.StockStatus); ok {
		local.StockStatus = status
		statusFromRemote = true
	}
	if remote.ExpectedDemandIncrease != nil {
		local.ExpectedDemandIncrease = *remote.ExpectedDemandIncrease
	}

	switch {
	case remote.Recommendation != "":
		local.Recommendation = remote.Recommendation
	case statusFromRemote || remote.ExpectedDemandIncrease != nil:
		local.Recommendation = Recommendation(local.StockStatus, local.ExpectedDemandIncrease)
	}
	return local
}

var _ Predictor = (*RemotePredictor)(nil)
