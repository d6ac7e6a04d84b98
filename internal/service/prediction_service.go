package service

import (
	"context"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/ai"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const defaultOptimizationTarget = "cost"

// AIService is the part of the AI service client used for optimization and
// health checks.
type AIService interface {
	Optimize(ctx context.Context, records []domain.InventoryRecord, target string, constraints map[string]interface{}) (map[string]interface{}, error)
	Health(ctx context.Context) (map[string]interface{}, error)
	BaseURL() string
}

// OptimizeRequest carries the optional optimization fields of a request.
type OptimizeRequest struct {
	Target      string                 `json:"target"`
	Constraints map[string]interface{} `json:"constraints"`
}

type PredictionService struct {
	repo      repository.InventoryRepository
	predictor ai.Predictor
	client    AIService
}

func NewPredictionService(repo repository.InventoryRepository, predictor ai.Predictor, client AIService) *PredictionService {
	if predictor == nil {
		predictor = ai.NewHeuristicPredictor()
	}
	return &PredictionService{repo: repo, predictor: predictor, client: client}
}

// Predict returns one prediction per stored record. With nothing stored it
// returns domain.ErrNoData.
func (s *PredictionService) Predict(ctx context.Context) ([]domain.InventoryPrediction, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoData
	}
	return s.predictor.Predict(ctx, records)
}

// Optimize forwards the stored records to the AI service. Failures come
// back as an error payload, never as an error.
func (s *PredictionService) Optimize(ctx context.Context, req OptimizeRequest) map[string]interface{} {
	target := req.Target
	if target == "" {
		target = defaultOptimizationTarget
	}
	constraints := req.Constraints
	if constraints == nil {
		constraints = map[string]interface{}{}
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return map[string]interface{}{"error": "Optimization failed: " + err.Error()}
	}
	if records == nil {
		records = make([]domain.InventoryRecord, 0)
	}

	resp, err := s.client.Optimize(ctx, records, target, constraints)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("Optimization request failed")
		return map[string]interface{}{"error": "Optimization failed: " + err.Error()}
	}
	if resp == nil {
		return map[string]interface{}{"error": "No response from AI service"}
	}
	return resp
}

// Health reports whether the AI service answers its health check.
func (s *PredictionService) Health(ctx context.Context) map[string]interface{} {
	resp, err := s.client.Health(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("AI health check failed")
		return map[string]interface{}{
			"status":       "unhealthy",
			"aiServiceUrl": s.client.BaseURL(),
			"error":        err.Error(),
		}
	}
	return map[string]interface{}{
		"status":       "healthy",
		"aiServiceUrl": s.client.BaseURL(),
		"response":     resp,
	}
}
