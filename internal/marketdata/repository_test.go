package marketdata

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/pkg/config"
	"github.com/vv031/Stock-Market/pkg/database"
	"github.com/vv031/Stock-Market/pkg/logger"
)

func TestBuildQuote(t *testing.T) {
	company := contracts.Company{Symbol: "TCS", MarketCap: 1_200_000, PERatio: 30.2, DividendYield: 1.2}
	latest := contracts.PricePoint{Close: 110, High: 112, Low: 108, Volume: 5000}
	prev := contracts.PricePoint{Close: 100}
	high, low := 150.123, 90.456

	q := buildQuote(company, latest, &prev, &high, &low)
	assert.Equal(t, "TCS", q.Symbol)
	assert.Equal(t, 110.0, q.CurrentPrice)
	assert.Equal(t, 10.0, q.Change)
	assert.Equal(t, 10.0, q.ChangePercent)
	assert.Equal(t, int64(5000), q.Volume)
	assert.Equal(t, 150.12, q.Week52High)
	assert.Equal(t, 90.46, q.Week52Low)
	assert.Equal(t, 1_200_000.0, q.MarketCap)
}

func TestBuildQuote_SingleRow(t *testing.T) {
	latest := contracts.PricePoint{Close: 110, High: 112, Low: 108}

	q := buildQuote(contracts.Company{Symbol: "TCS"}, latest, nil, nil, nil)
	assert.Zero(t, q.Change)
	assert.Zero(t, q.ChangePercent)
	assert.Equal(t, 112.0, q.Week52High)
	assert.Equal(t, 108.0, q.Week52Low)
}

func TestBuildPrediction_Direction(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	up := buildPrediction("TCS", 100, 101, 0.7, date)
	assert.Equal(t, contracts.DirectionUp, up.Direction)
	assert.NoError(t, up.Validate())

	flat := buildPrediction("TCS", 100, 100, 0.7, date)
	assert.Equal(t, contracts.DirectionDown, flat.Direction)
}

// Integration: requires a disposable PostgreSQL database
func TestRepository_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" || testing.Short() {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureSchema(ctx))

	const symbol = "ZZTEST"
	cleanup := func() {
		db.Pool.Exec(ctx, `DELETE FROM predictions WHERE company_symbol = $1`, symbol)
		db.Pool.Exec(ctx, `DELETE FROM stock_data WHERE company_symbol = $1`, symbol)
		db.Pool.Exec(ctx, `DELETE FROM companies WHERE symbol = $1`, symbol)
	}
	cleanup()
	defer cleanup()

	_, err = db.Pool.Exec(ctx, `INSERT INTO companies (symbol, name, sector, market_cap, pe_ratio, dividend_yield) VALUES ($1, 'Test Co', 'IT', 1000, 10, 1)`, symbol)
	require.NoError(t, err)

	repo := NewRepository(db.Pool, logger.Nop())

	_, err = repo.GetQuote(ctx, symbol)
	assert.Equal(t, msgNoStockData, err.Error())

	_, err = repo.GetPrediction(ctx, symbol)
	assert.True(t, contracts.IsKind(err, contracts.KindModelUnavailable))

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i, price := range []float64{100, 105, 110} {
		_, err = db.Pool.Exec(ctx,
			`INSERT INTO stock_data (company_symbol, date, open_price, high_price, low_price, close_price, volume) VALUES ($1, $2, $3, $4, $5, $3, 1000)`,
			symbol, today.AddDate(0, 0, i-2), price, price+1, price-1)
		require.NoError(t, err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO predictions (company_symbol, predicted_price, confidence, prediction_date) VALUES ($1, 115, 0.8, $2)`,
		symbol, today.AddDate(0, 0, 1))
	require.NoError(t, err)

	history, err := repo.GetHistory(ctx, symbol, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 105.0, history[0].Close)
	assert.Equal(t, 110.0, history[1].Close)

	quote, err := repo.GetQuote(ctx, symbol)
	require.NoError(t, err)
	assert.Equal(t, 110.0, quote.CurrentPrice)
	assert.Equal(t, 5.0, quote.Change)
	assert.Equal(t, 111.0, quote.Week52High)
	assert.Equal(t, 99.0, quote.Week52Low)

	pred, err := repo.GetPrediction(ctx, symbol)
	require.NoError(t, err)
	assert.Equal(t, contracts.DirectionUp, pred.Direction)
	assert.Equal(t, 110.0, pred.CurrentPrice)

	_, err = repo.GetHistory(ctx, "NOPE_ZZ", 5)
	assert.Equal(t, msgCompanyNotFound, err.Error())
}
