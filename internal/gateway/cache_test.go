package gateway

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/internal/contracts/contractstest"
	"github.com/vv031/Stock-Market/pkg/config"
	"github.com/vv031/Stock-Market/pkg/logger"
	"github.com/vv031/Stock-Market/pkg/redis"
)

func disabledCache(t *testing.T) *redis.Cache {
	t.Helper()
	client, err := redis.New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	return redis.NewCache(client, "test")
}

func TestCached_PassthroughWhenDisabled(t *testing.T) {
	src := contractstest.New()
	gw := NewCached(src, disabledCache(t), logger.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		companies, err := gw.ListCompanies(ctx)
		require.NoError(t, err)
		assert.Len(t, companies, 2)

		_, err = gw.GetHistory(ctx, "AAPL", 30)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, src.Calls(contracts.OpListCompanies))
	assert.Equal(t, 2, src.Calls(contracts.OpGetHistory))
	assert.NoError(t, gw.InvalidateCatalog(ctx))
}

func TestCached_ErrorsPassThrough(t *testing.T) {
	src := contractstest.New()
	src.ListErr = contracts.NewServerError(contracts.OpListCompanies, 500, "")
	gw := NewCached(src, disabledCache(t), logger.Nop())

	_, err := gw.ListCompanies(context.Background())
	assert.Equal(t, contracts.MsgServerError, err.Error())
}

func TestCached_QuoteAndPredictionNeverCached(t *testing.T) {
	src := contractstest.New()
	gw := NewCached(src, disabledCache(t), logger.Nop())
	ctx := context.Background()

	q, err := gw.GetQuote(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", q.Symbol)

	p, err := gw.GetPrediction(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", p.Symbol)

	assert.NoError(t, gw.Health(ctx))
	assert.Equal(t, 1, src.Calls(contracts.OpHealth))
}

// Integration: requires a running Redis at TEST_REDIS_HOST
func TestCached_ReadThrough(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := redis.New(ctx, config.RedisConfig{Enabled: true, Host: host, Port: "6379"})
	require.NoError(t, err)
	defer client.Close()

	cache := redis.NewCache(client, "dashboard-gateway-test")
	defer cache.Delete(ctx, redis.CompaniesKey())
	defer cache.Delete(ctx, redis.HistoryKey("AAPL", 30))
	require.NoError(t, cache.Delete(ctx, redis.CompaniesKey()))
	require.NoError(t, cache.Delete(ctx, redis.HistoryKey("AAPL", 30)))

	src := contractstest.New()
	gw := NewCached(src, cache, logger.Nop())

	for i := 0; i < 3; i++ {
		_, err := gw.ListCompanies(ctx)
		require.NoError(t, err)
		points, err := gw.GetHistory(ctx, "AAPL", 30)
		require.NoError(t, err)
		assert.Len(t, points, 4)
	}
	assert.Equal(t, 1, src.Calls(contracts.OpListCompanies))
	assert.Equal(t, 1, src.Calls(contracts.OpGetHistory))

	_, err = gw.RefreshHistory(ctx, "AAPL", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls(contracts.OpGetHistory))
}
