package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/pkg/logger"
)

const (
	predictionHistoryLimit = 10
	yearWindow             = 365 * 24 * time.Hour
)

// Messages matching the REST backend's detail strings
const (
	msgCompanyNotFound = "Company not found"
	msgNoStockData     = "No stock data available"
	msgNoPrediction    = "No prediction available"
)

// Repository reads market data straight from the backend's PostgreSQL schema.
// It serves the same Gateway contract as the REST client.
// ⭐ SSOT: SQL over companies / stock_data / predictions lives here
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
	now    func() time.Time
}

var _ contracts.Gateway = (*Repository)(nil)

// NewRepository creates a new market data repository
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{
		pool:   pool,
		logger: log.Component("marketdata"),
		now:    time.Now,
	}
}

// ListCompanies returns the catalog ordered by market cap, largest first
func (r *Repository) ListCompanies(ctx context.Context) ([]contracts.Company, error) {
	query := `
		SELECT symbol, name, sector, market_cap, pe_ratio, dividend_yield
		FROM companies
		ORDER BY market_cap DESC, symbol
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, r.queryError(contracts.OpListCompanies, err)
	}
	defer rows.Close()

	var companies []contracts.Company
	for rows.Next() {
		var c contracts.Company
		if err := rows.Scan(&c.Symbol, &c.Name, &c.Sector, &c.MarketCap, &c.PERatio, &c.DividendYield); err != nil {
			return nil, r.queryError(contracts.OpListCompanies, fmt.Errorf("failed to scan company: %w", err))
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError(contracts.OpListCompanies, fmt.Errorf("error iterating rows: %w", err))
	}

	return companies, nil
}

// GetCompany returns one catalog entry
func (r *Repository) GetCompany(ctx context.Context, symbol string) (*contracts.Company, error) {
	company, err := r.getCompany(ctx, contracts.OpGetCompany, symbol)
	if err != nil {
		return nil, err
	}
	return company, nil
}

// GetHistory returns the latest days rows, sorted ascending
func (r *Repository) GetHistory(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error) {
	if _, err := r.getCompany(ctx, contracts.OpGetHistory, symbol); err != nil {
		return nil, err
	}

	query := `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM stock_data
		WHERE company_symbol = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, symbol, days)
	if err != nil {
		return nil, r.queryError(contracts.OpGetHistory, err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, r.queryError(contracts.OpGetHistory, fmt.Errorf("failed to scan price: %w", err))
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError(contracts.OpGetHistory, fmt.Errorf("error iterating rows: %w", err))
	}

	contracts.SortHistory(points)
	return points, nil
}

// GetQuote derives the quote from the two latest rows and the trailing year
func (r *Repository) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	company, err := r.getCompany(ctx, contracts.OpGetQuote, symbol)
	if err != nil {
		return nil, err
	}

	latest, err := r.latestPrices(ctx, contracts.OpGetQuote, symbol, 2)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, contracts.NewServerError(contracts.OpGetQuote, http.StatusNotFound, msgNoStockData)
	}

	var yearHigh, yearLow *float64
	query := `
		SELECT MAX(high_price), MIN(low_price)
		FROM stock_data
		WHERE company_symbol = $1 AND date >= $2
	`
	if err := r.pool.QueryRow(ctx, query, symbol, r.now().Add(-yearWindow)).Scan(&yearHigh, &yearLow); err != nil {
		return nil, r.queryError(contracts.OpGetQuote, err)
	}

	var prev *contracts.PricePoint
	if len(latest) > 1 {
		prev = &latest[1]
	}
	quote := buildQuote(*company, latest[0], prev, yearHigh, yearLow)
	return &quote, nil
}

// GetPrediction returns the most recently stored forecast. This source does
// not run a model; without a stored forecast it is model_unavailable.
func (r *Repository) GetPrediction(ctx context.Context, symbol string) (*contracts.Prediction, error) {
	predictions, err := r.predictions(ctx, contracts.OpGetPrediction, symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(predictions) == 0 {
		return nil, contracts.NewModelUnavailableError(contracts.OpGetPrediction, http.StatusNotFound, msgNoPrediction)
	}
	return &predictions[0], nil
}

// GetPredictionHistory returns the latest stored forecasts, newest first
func (r *Repository) GetPredictionHistory(ctx context.Context, symbol string) ([]contracts.Prediction, error) {
	return r.predictions(ctx, contracts.OpGetPredictionHistory, symbol, predictionHistoryLimit)
}

// Health pings the database
func (r *Repository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return contracts.NewNetworkError(contracts.OpHealth, err)
	}
	return nil
}

func (r *Repository) getCompany(ctx context.Context, op, symbol string) (*contracts.Company, error) {
	query := `
		SELECT symbol, name, sector, market_cap, pe_ratio, dividend_yield
		FROM companies
		WHERE symbol = $1
	`

	var c contracts.Company
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&c.Symbol, &c.Name, &c.Sector, &c.MarketCap, &c.PERatio, &c.DividendYield)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.NewServerError(op, http.StatusNotFound, msgCompanyNotFound)
	}
	if err != nil {
		return nil, r.queryError(op, err)
	}
	return &c, nil
}

func (r *Repository) latestPrices(ctx context.Context, op, symbol string, limit int) ([]contracts.PricePoint, error) {
	query := `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM stock_data
		WHERE company_symbol = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, r.queryError(op, err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, r.queryError(op, fmt.Errorf("failed to scan price: %w", err))
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError(op, fmt.Errorf("error iterating rows: %w", err))
	}
	return points, nil
}

func (r *Repository) predictions(ctx context.Context, op, symbol string, limit int) ([]contracts.Prediction, error) {
	if _, err := r.getCompany(ctx, op, symbol); err != nil {
		return nil, err
	}

	latest, err := r.latestPrices(ctx, op, symbol, 1)
	if err != nil {
		return nil, err
	}
	var current float64
	if len(latest) > 0 {
		current = latest[0].Close
	}

	query := `
		SELECT predicted_price, confidence, prediction_date
		FROM predictions
		WHERE company_symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, r.queryError(op, err)
	}
	defer rows.Close()

	var predictions []contracts.Prediction
	for rows.Next() {
		var (
			predicted, confidence float64
			date                  time.Time
		)
		if err := rows.Scan(&predicted, &confidence, &date); err != nil {
			return nil, r.queryError(op, fmt.Errorf("failed to scan prediction: %w", err))
		}
		predictions = append(predictions, buildPrediction(symbol, current, predicted, confidence, date))
	}
	if err := rows.Err(); err != nil {
		return nil, r.queryError(op, fmt.Errorf("error iterating rows: %w", err))
	}
	return predictions, nil
}

// queryError converts a database failure into a GatewayError. Context
// expiry is a network error; anything else is a server error whose message
// stays generic.
func (r *Repository) queryError(op string, err error) *contracts.GatewayError {
	r.logger.WithFields(map[string]interface{}{
		"op":    op,
		"error": err.Error(),
	}).Warn("Market data query failed")
	return contracts.AsGatewayError(op, err)
}

// buildQuote mirrors the backend's info derivation: change against the
// previous row, 52-week range over the trailing year, or the latest row's
// range when the year is empty.
func buildQuote(company contracts.Company, latest contracts.PricePoint, prev *contracts.PricePoint, yearHigh, yearLow *float64) contracts.Quote {
	var change, changePercent float64
	if prev != nil {
		change = latest.Close - prev.Close
		if prev.Close != 0 {
			changePercent = change / prev.Close * 100
		}
	}

	high, low := latest.High, latest.Low
	if yearHigh != nil && yearLow != nil {
		high, low = *yearHigh, *yearLow
	}

	return contracts.Quote{
		Symbol:        company.Symbol,
		CurrentPrice:  latest.Close,
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		Volume:        latest.Volume,
		MarketCap:     company.MarketCap,
		PERatio:       company.PERatio,
		DividendYield: company.DividendYield,
		Week52High:    round2(high),
		Week52Low:     round2(low),
	}
}

func buildPrediction(symbol string, current, predicted, confidence float64, date time.Time) contracts.Prediction {
	direction := contracts.DirectionDown
	if predicted > current {
		direction = contracts.DirectionUp
	}
	return contracts.Prediction{
		Symbol:         symbol,
		CurrentPrice:   current,
		PredictedPrice: predicted,
		Direction:      direction,
		Confidence:     confidence,
		PredictionDate: date,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
