package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/pkg/logger"
	"github.com/vv031/Stock-Market/pkg/redis"
)

// Cached is a read-through Redis cache in front of another Gateway.
// Quotes and live predictions always go to the source. Cache failures are
// logged and never fail a call.
// ⭐ SSOT: gateway-level caching policy
type Cached struct {
	next   contracts.Gateway
	cache  *redis.Cache
	logger *logger.Logger
}

var _ contracts.Gateway = (*Cached)(nil)

// NewCached wraps next. With a disabled cache every call passes through.
func NewCached(next contracts.Gateway, cache *redis.Cache, log *logger.Logger) *Cached {
	return &Cached{
		next:   next,
		cache:  cache,
		logger: log.Component("gateway_cache"),
	}
}

// ListCompanies serves the catalog from cache when present
func (g *Cached) ListCompanies(ctx context.Context) ([]contracts.Company, error) {
	key := redis.CompaniesKey()

	var companies []contracts.Company
	if g.lookup(ctx, key, &companies) {
		return companies, nil
	}

	companies, err := g.next.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	g.store(ctx, key, companies, redis.TTLLong)
	return companies, nil
}

func (g *Cached) GetCompany(ctx context.Context, symbol string) (*contracts.Company, error) {
	return g.next.GetCompany(ctx, symbol)
}

// GetHistory serves a symbol's history window from cache when present
func (g *Cached) GetHistory(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error) {
	key := redis.HistoryKey(symbol, days)

	var points []contracts.PricePoint
	if g.lookup(ctx, key, &points) {
		return points, nil
	}

	return g.RefreshHistory(ctx, symbol, days)
}

// RefreshHistory fetches history from the source and overwrites the cache
func (g *Cached) RefreshHistory(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error) {
	points, err := g.next.GetHistory(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	g.store(ctx, redis.HistoryKey(symbol, days), points, redis.TTLMedium)
	return points, nil
}

func (g *Cached) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	return g.next.GetQuote(ctx, symbol)
}

func (g *Cached) GetPrediction(ctx context.Context, symbol string) (*contracts.Prediction, error) {
	return g.next.GetPrediction(ctx, symbol)
}

// GetPredictionHistory serves stored forecasts from cache when present
func (g *Cached) GetPredictionHistory(ctx context.Context, symbol string) ([]contracts.Prediction, error) {
	key := redis.PredictionHistoryKey(symbol)

	var predictions []contracts.Prediction
	if g.lookup(ctx, key, &predictions) {
		return predictions, nil
	}

	predictions, err := g.next.GetPredictionHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}
	g.store(ctx, key, predictions, redis.TTLShort)
	return predictions, nil
}

func (g *Cached) Health(ctx context.Context) error {
	return g.next.Health(ctx)
}

// InvalidateCatalog drops the cached catalog
func (g *Cached) InvalidateCatalog(ctx context.Context) error {
	if err := g.cache.Delete(ctx, redis.CompaniesKey()); err != nil {
		return fmt.Errorf("invalidate catalog: %w", err)
	}
	return nil
}

func (g *Cached) lookup(ctx context.Context, key string, dest interface{}) bool {
	found, err := g.cache.Get(ctx, key, dest)
	if err != nil {
		g.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache read failed")
		return false
	}
	if found {
		g.logger.WithField("key", key).Debug("Cache hit")
	}
	return found
}

func (g *Cached) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := g.cache.Set(ctx, key, value, ttl); err != nil {
		g.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache write failed")
	}
}
