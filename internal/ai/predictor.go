// Package ai reaches the external prediction service and provides the local
// stock classification used when it cannot be reached.
package ai

import (
	"context"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
)

// Predictor produces one prediction per record, in record order.
type Predictor interface {
	Predict(ctx context.Context, records []domain.InventoryRecord) ([]domain.InventoryPrediction, error)
}

const (
	recommendIncrease = "Increase inventory levels immediately"
	recommendPromote  = "Consider promotional activities to reduce inventory"
	recommendMonitor  = "Monitor demand trends and prepare for increased orders"
	recommendMaintain = "Maintain current inventory levels"
)

// Classify derives the stock status of a record and whether demand is
// expected to exceed what is on hand.
func Classify(r domain.InventoryRecord) (domain.StockStatus, bool) {
	level := float64(r.InventoryLevel)

	status := domain.StockNormal
	switch {
	case level < r.DemandForecast*domain.UnderstockDemandRatio:
		status = domain.StockUnderstocked
	case r.InventoryLevel > domain.OverstockThreshold:
		status = domain.StockOverstocked
	}

	return status, r.DemandForecast > level
}

// Recommendation maps a classification to its canned advice.
func Recommendation(status domain.StockStatus, expectedDemandIncrease bool) string {
	switch {
	case status == domain.StockUnderstocked:
		return recommendIncrease
	case status == domain.StockOverstocked:
		return recommendPromote
	case expectedDemandIncrease:
		return recommendMonitor
	default:
		return recommendMaintain
	}
}

func newPrediction(r domain.InventoryRecord, source string) domain.InventoryPrediction {
	status, increase := Classify(r)
	return domain.InventoryPrediction{
		ProductID:              r.ProductID,
		ProductName:            r.ProductName,
		StoreID:                r.StoreID,
		Category:               r.Category,
		CurrentInventory:       r.InventoryLevel,
		StockStatus:            status,
		ExpectedDemandIncrease: increase,
		DemandForecast:         r.DemandForecast,
		Recommendation:         Recommendation(status, increase),
		Source:                 source,
	}
}
