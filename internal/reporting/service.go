package reporting

import (
	"context"
	"log/slog"

	"github.com/rentops-lab/rentops/internal/aggregation"
	v1 "github.com/rentops-lab/rentops/internal/api/v1"
	"github.com/rentops-lab/rentops/internal/metrics"
)

// Aggregator is the part of the aggregation engine the reporting layer needs.
type Aggregator interface {
	Aggregate(ctx context.Context, q aggregation.Query) (*aggregation.Result, error)
}

// Service serves revenue reports, reading through an optional cache.
// Cache failures are logged and treated as misses.
type Service struct {
	engine  Aggregator
	cache   Cache
	metrics *metrics.Metrics
}

// NewService creates a reporting service. cache may be nil.
func NewService(engine Aggregator, cache Cache, m *metrics.Metrics) *Service {
	return &Service{engine: engine, cache: cache, metrics: m}
}

// Report returns the report for q, from cache when present.
func (s *Service) Report(ctx context.Context, q aggregation.Query) (v1.RevenueReport, error) {
	if s.cache == nil {
		return s.compute(ctx, q)
	}

	key := CacheKey(q)
	cached, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncReportCache("error")
		slog.Warn("[Reporting] Cache read failed", "key", key, "error", err)
	case cached != nil:
		s.metrics.IncReportCache("hit")
		return *cached, nil
	default:
		s.metrics.IncReportCache("miss")
	}

	return s.Refresh(ctx, q)
}

// Refresh recomputes the report for q and stores it in the cache.
func (s *Service) Refresh(ctx context.Context, q aggregation.Query) (v1.RevenueReport, error) {
	report, err := s.compute(ctx, q)
	if err != nil {
		return v1.RevenueReport{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, CacheKey(q), report); err != nil {
			slog.Warn("[Reporting] Cache write failed", "error", err)
		}
	}
	return report, nil
}

func (s *Service) compute(ctx context.Context, q aggregation.Query) (v1.RevenueReport, error) {
	result, err := s.engine.Aggregate(ctx, q)
	if err != nil {
		return v1.RevenueReport{}, err
	}
	return NewReport(q, result), nil
}
