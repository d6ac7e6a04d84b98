// Package analytics derives read models from the full inventory record set.
// Every function is a pure full scan; nothing is materialized.
package analytics

import (
	"fmt"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const currencyUSD = "USD"

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

// Dashboard summarizes records for the dashboard cards. An empty input is
// reported as domain.ErrNoData rather than a zero-valued summary.
func Dashboard(records []domain.InventoryRecord) (*domain.DashboardStats, error) {
	if len(records) == 0 {
		return nil, domain.ErrNoData
	}

	products := make(map[string]struct{})
	stores := make(map[string]struct{})
	var (
		levelSum    int64
		lowStock    int
		overstocked int
	)
	for _, r := range records {
		products[r.ProductID] = struct{}{}
		stores[r.StoreID] = struct{}{}
		levelSum += int64(r.InventoryLevel)
		if r.InventoryLevel < domain.LowStockThreshold {
			lowStock++
		}
		if r.InventoryLevel > domain.OverstockThreshold {
			overstocked++
		}
	}

	current, forecast := revenue(records)
	avg := decimal.NewFromInt(levelSum).Div(decimal.NewFromInt(int64(len(records))))

	return &domain.DashboardStats{
		TotalProducts:         len(products),
		TotalStores:           len(stores),
		AverageInventoryLevel: roundHalfUp(avg),
		LowStockItems:         lowStock,
		OverstockedItems:      overstocked,
		TotalValue:            roundHalfUp(current),
		RevenueForecast:       roundHalfUp(forecast),
		AIInsights:            len(records),
	}, nil
}

// RevenueForecast compares current stock value with forecast demand value.
// Growth is 0 when there is no current revenue. Empty input is ErrNoData.
func RevenueForecast(records []domain.InventoryRecord) (*domain.RevenueForecast, error) {
	if len(records) == 0 {
		return nil, domain.ErrNoData
	}
	current, forecast := revenue(records)

	growth := decimal.Zero
	if current.IsPositive() {
		growth = forecast.Sub(current).Div(current).Mul(hundred)
	}

	return &domain.RevenueForecast{
		CurrentRevenue:    roundHalfUp(current),
		ForecastedRevenue: roundHalfUp(forecast),
		GrowthRate:        roundTo(growth, 2).InexactFloat64(),
		Currency:          currencyUSD,
	}, nil
}

// StockAlerts returns one alert per record below the low-stock or above the
// overstock threshold, in record order.
func StockAlerts(records []domain.InventoryRecord) []domain.StockAlert {
	alerts := make([]domain.StockAlert, 0)
	for _, r := range records {
		var alertType domain.AlertType
		switch {
		case r.InventoryLevel < domain.LowStockThreshold:
			alertType = domain.AlertLowStock
		case r.InventoryLevel > domain.OverstockThreshold:
			alertType = domain.AlertOverstocked
		default:
			continue
		}

		severity := domain.SeverityWarning
		if r.InventoryLevel < domain.CriticalStockThreshold {
			severity = domain.SeverityCritical
		}

		alerts = append(alerts, domain.StockAlert{
			ProductID:      r.ProductID,
			ProductName:    r.ProductName,
			StoreID:        r.StoreID,
			CurrentLevel:   r.InventoryLevel,
			AlertType:      alertType,
			Severity:       severity,
			Recommendation: alertRecommendation(alertType, r),
		})
	}
	return alerts
}

// CategoryPerformance groups records by category.
func CategoryPerformance(records []domain.InventoryRecord) (map[string]domain.CategoryStats, error) {
	if len(records) == 0 {
		return nil, domain.ErrNoData
	}

	type acc struct {
		value    decimal.Decimal
		levelSum int64
		lowStock int
		count    int
	}
	groups := make(map[string]*acc)
	for _, r := range records {
		g, ok := groups[r.Category]
		if !ok {
			g = &acc{value: decimal.Zero}
			groups[r.Category] = g
		}
		g.value = g.value.Add(lineValue(r.InventoryLevel, r.Price))
		g.levelSum += int64(r.InventoryLevel)
		g.count++
		if r.InventoryLevel < domain.LowStockThreshold {
			g.lowStock++
		}
	}

	out := make(map[string]domain.CategoryStats, len(groups))
	for category, g := range groups {
		avg := decimal.NewFromInt(g.levelSum).Div(decimal.NewFromInt(int64(g.count)))
		out[category] = domain.CategoryStats{
			TotalValue:       roundHalfUp(g.value),
			AverageInventory: roundHalfUp(avg),
			LowStockItems:    g.lowStock,
			ItemCount:        g.count,
		}
	}
	return out, nil
}

func alertRecommendation(t domain.AlertType, r domain.InventoryRecord) string {
	if t == domain.AlertLowStock {
		return fmt.Sprintf("Urgent: Reorder %s immediately. Current stock: %d", r.ProductName, r.InventoryLevel)
	}
	return fmt.Sprintf("Consider promotional activities for %s. Current stock: %d", r.ProductName, r.InventoryLevel)
}

// revenue returns Σ inventoryLevel×price and Σ demandForecast×price.
func revenue(records []domain.InventoryRecord) (current, forecast decimal.Decimal) {
	current, forecast = decimal.Zero, decimal.Zero
	for _, r := range records {
		price := decimal.NewFromFloat(r.Price)
		current = current.Add(decimal.NewFromInt(int64(r.InventoryLevel)).Mul(price))
		forecast = forecast.Add(decimal.NewFromFloat(r.DemandForecast).Mul(price))
	}
	return current, forecast
}

func lineValue(level int, price float64) decimal.Decimal {
	return decimal.NewFromInt(int64(level)).Mul(decimal.NewFromFloat(price))
}

// roundHalfUp rounds to the nearest integer with ties toward +inf.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

func roundTo(d decimal.Decimal, places int32) decimal.Decimal {
	scale := decimal.New(1, places)
	return d.Mul(scale).Add(half).Floor().Div(scale)
}
