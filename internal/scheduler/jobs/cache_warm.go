package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/pkg/logger"
)

// HistoryWarmer is the part of the cached gateway the warm job drives
type HistoryWarmer interface {
	InvalidateCatalog(ctx context.Context) error
	ListCompanies(ctx context.Context) ([]contracts.Company, error)
	RefreshHistory(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error)
}

// CacheWarmJob reloads the catalog and every symbol's history window into
// the cache after the market closes, so the first selection of the day is
// served from Redis.
type CacheWarmJob struct {
	warmer   HistoryWarmer
	days     int
	schedule string
	logger   *logger.Logger
}

// NewCacheWarmJob creates a new cache warm job
func NewCacheWarmJob(warmer HistoryWarmer, days int, schedule string, log *logger.Logger) *CacheWarmJob {
	return &CacheWarmJob{
		warmer:   warmer,
		days:     days,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *CacheWarmJob) Name() string {
	return "cache_warm"
}

// Schedule returns the configured cron schedule
func (j *CacheWarmJob) Schedule() string {
	return j.schedule
}

// Run refreshes the catalog, then each symbol's history. A symbol that
// fails does not stop the others; all failures are returned joined.
func (j *CacheWarmJob) Run(ctx context.Context) error {
	if err := j.warmer.InvalidateCatalog(ctx); err != nil {
		j.logger.WithError(err).Warn("Failed to invalidate cached catalog")
	}

	companies, err := j.warmer.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}

	var errs []error
	warmed := 0
	for _, c := range companies {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := j.warmer.RefreshHistory(ctx, c.Symbol, j.days); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Symbol, err))
			continue
		}
		warmed++
	}

	j.logger.WithFields(map[string]interface{}{
		"companies": len(companies),
		"warmed":    warmed,
		"failed":    len(companies) - warmed,
	}).Info("Cache warm completed")

	return errors.Join(errs...)
}
