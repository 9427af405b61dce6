package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emreakay/inventory-api/internal/cache"
	"github.com/emreakay/inventory-api/internal/repository"
)

// DashboardService serves the aggregate inventory snapshot. The summary is
// cached briefly; dashboards tolerate slightly stale numbers.
type DashboardService struct {
	repo   repository.DashboardRepository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(repo repository.DashboardRepository, c *cache.Cache, logger *slog.Logger) *DashboardService {
	return &DashboardService{repo: repo, cache: c, logger: logger}
}

// Summary returns the aggregate snapshot, served from cache when fresh.
func (s *DashboardService) Summary(ctx context.Context) (*repository.DashboardSummary, error) {
	if summary, err := s.cache.GetDashboard(ctx); err == nil {
		return summary, nil
	}

	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	if err := s.cache.SetDashboard(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to cache dashboard summary", slog.String("error", err.Error()))
	}

	return summary, nil
}
