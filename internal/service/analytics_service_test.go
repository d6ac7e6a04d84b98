package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/cache"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository/memory"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *memory.InventoryRepository {
	t.Helper()
	repo := memory.NewInventoryRepository()
	svc := service.NewInventoryService(repo, nil, nil, nil, ingestCfg, 0)
	_, err := svc.Import(context.Background(), "seed", strings.NewReader(kaggleCSV))
	require.NoError(t, err)
	return repo
}

func TestAnalyticsService_EmptyStore(t *testing.T) {
	svc := service.NewAnalyticsService(memory.NewInventoryRepository(), nil)
	ctx := context.Background()

	_, err := svc.GetDashboard(ctx)
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = svc.GetCategoryPerformance(ctx)
	assert.ErrorIs(t, err, domain.ErrNoData)

	alerts, err := svc.GetStockAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	forecast, err := svc.GetRevenueForecast(ctx)
	assert.Nil(t, forecast)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestAnalyticsService_ComputesAndCaches(t *testing.T) {
	spy := newSpyCache()
	svc := service.NewAnalyticsService(seeded(t), spy)
	ctx := context.Background()

	stats, err := svc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 1, stats.LowStockItems)
	assert.Equal(t, 1, stats.OverstockedItems)
	assert.Equal(t, int64(800), stats.TotalValue)
	assert.Equal(t, stats, spy.store[cache.KeyDashboard])

	alerts, err := svc.GetStockAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, domain.AlertLowStock, alerts[0].AlertType)
	assert.Equal(t, domain.SeverityWarning, alerts[0].Severity)

	forecast, err := svc.GetRevenueForecast(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(800), forecast.CurrentRevenue)
	assert.Equal(t, int64(2020), forecast.ForecastedRevenue)
	assert.Equal(t, 152.5, forecast.GrowthRate)

	categories, err := svc.GetCategoryPerformance(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Contains(t, spy.store, cache.KeyCategoryPerformance)
}

type hitCache struct{ spyCache }

func (c *hitCache) Get(_ context.Context, name string, dest interface{}) (bool, error) {
	if name != cache.KeyDashboard {
		return false, nil
	}
	*(dest.(*domain.DashboardStats)) = domain.DashboardStats{TotalProducts: 42}
	return true, nil
}

func TestAnalyticsService_ServesFromCache(t *testing.T) {
	svc := service.NewAnalyticsService(memory.NewInventoryRepository(), &hitCache{})
	stats, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalProducts)
}
