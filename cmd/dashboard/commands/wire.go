package commands

import (
	"context"
	"fmt"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/internal/external/stockapi"
	"github.com/vv031/Stock-Market/internal/gateway"
	"github.com/vv031/Stock-Market/internal/marketdata"
	"github.com/vv031/Stock-Market/pkg/config"
	"github.com/vv031/Stock-Market/pkg/database"
	"github.com/vv031/Stock-Market/pkg/httputil"
	"github.com/vv031/Stock-Market/pkg/logger"
	"github.com/vv031/Stock-Market/pkg/redis"
)

// cachePrefix namespaces every dashboard key in Redis
const cachePrefix = "dashboard"

// backend is the data source stack shared by every command
type backend struct {
	Gateway *gateway.Cached
	DB      *database.DB  // nil unless DATA_SOURCE=postgres
	Redis   *redis.Client // disabled client when REDIS_ENABLED=false
}

// Close releases the connections opened by openBackend
func (b *backend) Close() {
	if b.Redis != nil {
		b.Redis.Close()
	}
	if b.DB != nil {
		b.DB.Close()
	}
}

// openBackend builds the gateway selected by cfg.Gateway.Source and fronts it
// with the Redis cache
// ⭐ SSOT: the data source is chosen only here
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	b := &backend{}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	b.Redis = rc

	var source contracts.Gateway

	switch cfg.Gateway.Source {
	case config.DataSourcePostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		b.DB = db

		if err := db.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		source = marketdata.NewRepository(db.Pool, log)

	default:
		httpClient := httputil.New(cfg, log)
		source = stockapi.NewClient(cfg.Gateway.BaseURL, httpClient, log)
	}

	b.Gateway = gateway.NewCached(source, redis.NewCache(rc, cachePrefix), log)

	log.WithFields(map[string]interface{}{
		"source": cfg.Gateway.Source,
		"cache":  rc.Enabled(),
	}).Info("Data source ready")

	return b, nil
}
