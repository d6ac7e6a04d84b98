package service

import (
	"context"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/analytics"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/cache"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// AnalyticsService serves the analytics read models, computed from a full
// scan and kept in the analytics cache until the next upload.
type AnalyticsService struct {
	repo  repository.InventoryRepository
	cache cache.AnalyticsCache
}

func NewAnalyticsService(repo repository.InventoryRepository, cacheImpl cache.AnalyticsCache) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &AnalyticsService{repo: repo, cache: cacheImpl}
}

func (s *AnalyticsService) GetDashboard(ctx context.Context) (*domain.DashboardStats, error) {
	var cached domain.DashboardStats
	if s.fromCache(ctx, cache.KeyDashboard, &cached) {
		return &cached, nil
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := analytics.Dashboard(records)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, cache.KeyDashboard, stats)
	return stats, nil
}

func (s *AnalyticsService) GetRevenueForecast(ctx context.Context) (*domain.RevenueForecast, error) {
	var cached domain.RevenueForecast
	if s.fromCache(ctx, cache.KeyRevenueForecast, &cached) {
		return &cached, nil
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	forecast, err := analytics.RevenueForecast(records)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, cache.KeyRevenueForecast, forecast)
	return forecast, nil
}

func (s *AnalyticsService) GetStockAlerts(ctx context.Context) ([]domain.StockAlert, error) {
	var cached []domain.StockAlert
	if s.fromCache(ctx, cache.KeyStockAlerts, &cached) && cached != nil {
		return cached, nil
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	alerts := analytics.StockAlerts(records)

	s.toCache(ctx, cache.KeyStockAlerts, alerts)
	return alerts, nil
}

func (s *AnalyticsService) GetCategoryPerformance(ctx context.Context) (map[string]domain.CategoryStats, error) {
	var cached map[string]domain.CategoryStats
	if s.fromCache(ctx, cache.KeyCategoryPerformance, &cached) && len(cached) > 0 {
		return cached, nil
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := analytics.CategoryPerformance(records)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, cache.KeyCategoryPerformance, stats)
	return stats, nil
}

func (s *AnalyticsService) fromCache(ctx context.Context, name string, dest interface{}) bool {
	ok, err := s.cache.Get(ctx, name, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", name).Msg("analytics: cache get failed")
		return false
	}
	return ok
}

func (s *AnalyticsService) toCache(ctx context.Context, name string, value interface{}) {
	if err := s.cache.Set(ctx, name, value); err != nil {
		log.Warn().Err(err).Str("key", name).Msg("analytics: cache set failed")
	}
}
