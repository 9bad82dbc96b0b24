package services

import (
	"context"
	"log"
	"time"

	"agroledger/internal/caching"
	"agroledger/internal/models"
	"agroledger/internal/repositories"
)

const dashboardCacheTTL = 10 * time.Minute

type DashboardService interface {
	Metrics(ctx context.Context) (*models.DashboardMetrics, error)
	// Refresh recomputes the metrics and stores them in the cache
	Refresh(ctx context.Context) (*models.DashboardMetrics, error)
}

type dashboardService struct {
	store    repositories.TxStore
	cacheSvc caching.CacheService
}

func NewDashboardService(store repositories.TxStore, cacheSvc caching.CacheService) DashboardService {
	return &dashboardService{store: store, cacheSvc: cacheSvc}
}

func (s *dashboardService) Metrics(ctx context.Context) (*models.DashboardMetrics, error) {
	if cached, err := s.cacheSvc.GetDashboardMetrics(ctx); err == nil && cached != nil {
		return cached, nil
	}
	return s.Refresh(ctx)
}

func (s *dashboardService) Refresh(ctx context.Context) (*models.DashboardMetrics, error) {
	metrics, err := s.store.Repos().Dashboard.Metrics(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cacheSvc.SetDashboardMetrics(ctx, metrics, dashboardCacheTTL); err != nil {
		log.Printf("Failed to cache dashboard metrics: %v", err)
	}
	return metrics, nil
}
