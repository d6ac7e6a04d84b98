package analytics_test

import (
	"testing"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/analytics"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(product, store, category string, level int, forecast, price float64) domain.InventoryRecord {
	return domain.InventoryRecord{
		ProductID:      product,
		ProductName:    "Name " + product,
		StoreID:        store,
		Category:       category,
		InventoryLevel: level,
		DemandForecast: forecast,
		Price:          price,
	}
}

func sample() []domain.InventoryRecord {
	return []domain.InventoryRecord{
		rec("P1", "S1", "Electronics", 5, 20, 100),
		rec("P2", "S1", "Electronics", 150, 10, 2),
		rec("P1", "S2", "Toys", 50, 60, 1.5),
		rec("P3", "S2", "Toys", 3, 0, 10),
	}
}

func TestDashboard(t *testing.T) {
	stats, err := analytics.Dashboard(sample())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalStores)
	// (5+150+50+3)/4 = 52
	assert.Equal(t, int64(52), stats.AverageInventoryLevel)
	assert.Equal(t, 2, stats.LowStockItems)
	assert.Equal(t, 1, stats.OverstockedItems)
	// 500 + 300 + 75 + 30
	assert.Equal(t, int64(905), stats.TotalValue)
	// 2000 + 20 + 90 + 0
	assert.Equal(t, int64(2110), stats.RevenueForecast)
	assert.Equal(t, 4, stats.AIInsights)
}

func TestDashboard_EmptyIsNoData(t *testing.T) {
	stats, err := analytics.Dashboard(nil)
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestDashboard_RoundsHalfUp(t *testing.T) {
	stats, err := analytics.Dashboard([]domain.InventoryRecord{
		rec("A", "S", "C", 1, 0, 0.5),
		rec("B", "S", "C", 2, 0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.AverageInventoryLevel, "1.5 rounds up")
	assert.Equal(t, int64(1), stats.TotalValue, "0.5 rounds up")
}

func TestRevenueForecast_GrowthRate(t *testing.T) {
	rf, err := analytics.RevenueForecast([]domain.InventoryRecord{
		rec("A", "S", "C", 10, 12, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), rf.CurrentRevenue)
	assert.Equal(t, int64(1200), rf.ForecastedRevenue)
	assert.Equal(t, 20.0, rf.GrowthRate)
	assert.Equal(t, "USD", rf.Currency)
}

func TestRevenueForecast_TwoDecimalsAndZeroCurrent(t *testing.T) {
	rf, err := analytics.RevenueForecast([]domain.InventoryRecord{rec("A", "S", "C", 3, 4, 1)})
	require.NoError(t, err)
	assert.Equal(t, 33.33, rf.GrowthRate)

	rf, err = analytics.RevenueForecast([]domain.InventoryRecord{rec("A", "S", "C", 0, 4, 1)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, rf.GrowthRate)
	assert.Equal(t, int64(4), rf.ForecastedRevenue)
	assert.Equal(t, "USD", rf.Currency)
}

func TestRevenueForecast_EmptyIsNoData(t *testing.T) {
	rf, err := analytics.RevenueForecast(nil)
	assert.Nil(t, rf)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestStockAlerts(t *testing.T) {
	alerts := analytics.StockAlerts(sample())
	require.Len(t, alerts, 3)

	assert.Equal(t, domain.StockAlert{
		ProductID:      "P1",
		ProductName:    "Name P1",
		StoreID:        "S1",
		CurrentLevel:   5,
		AlertType:      domain.AlertLowStock,
		Severity:       domain.SeverityWarning,
		Recommendation: "Urgent: Reorder Name P1 immediately. Current stock: 5",
	}, alerts[0])

	assert.Equal(t, domain.AlertOverstocked, alerts[1].AlertType)
	assert.Equal(t, domain.SeverityWarning, alerts[1].Severity)
	assert.Equal(t, "Consider promotional activities for Name P2. Current stock: 150", alerts[1].Recommendation)

	assert.Equal(t, "P3", alerts[2].ProductID)
	assert.Equal(t, domain.SeverityCritical, alerts[2].Severity)

	assert.Empty(t, analytics.StockAlerts(nil))
	assert.NotNil(t, analytics.StockAlerts(nil))
}

func TestStockAlerts_BoundaryLevels(t *testing.T) {
	alerts := analytics.StockAlerts([]domain.InventoryRecord{
		rec("A", "S", "C", 10, 0, 0),
		rec("B", "S", "C", 100, 0, 0),
		rec("C", "S", "C", 4, 0, 0),
		rec("D", "S", "C", 101, 0, 0),
	})
	require.Len(t, alerts, 2)
	assert.Equal(t, "C", alerts[0].ProductID)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, "D", alerts[1].ProductID)
}

func TestCategoryPerformance(t *testing.T) {
	stats, err := analytics.CategoryPerformance(sample())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, domain.CategoryStats{TotalValue: 800, AverageInventory: 78, LowStockItems: 1, ItemCount: 2}, stats["Electronics"])
	assert.Equal(t, domain.CategoryStats{TotalValue: 105, AverageInventory: 27, LowStockItems: 1, ItemCount: 2}, stats["Toys"])

	_, err = analytics.CategoryPerformance(nil)
	assert.ErrorIs(t, err, domain.ErrNoData)
}
