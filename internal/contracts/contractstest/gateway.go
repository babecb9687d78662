// Package contractstest provides an in-memory Gateway for tests.
package contractstest

import (
	"context"
	"sync"
	"time"

	"github.com/vv031/Stock-Market/internal/contracts"
)

// Gateway is a scriptable contracts.Gateway. Nil hooks fall back to the
// canned data below. Safe for concurrent use.
type Gateway struct {
	Companies []contracts.Company
	ListErr   error

	HistoryFunc           func(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error)
	QuoteFunc             func(ctx context.Context, symbol string) (*contracts.Quote, error)
	PredictionFunc        func(ctx context.Context, symbol string) (*contracts.Prediction, error)
	PredictionHistoryFunc func(ctx context.Context, symbol string) ([]contracts.Prediction, error)
	HealthErr             error

	mu    sync.Mutex
	calls map[string]int
}

// New returns a gateway serving the default catalog
func New() *Gateway {
	return &Gateway{Companies: Catalog()}
}

// Catalog is the default two-company catalog
func Catalog() []contracts.Company {
	return []contracts.Company{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", MarketCap: 2_800_000, PERatio: 28.5, DividendYield: 0.5},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", MarketCap: 2_500_000, PERatio: 32.1, DividendYield: 0.8},
	}
}

// History builds a daily series starting 2024-01-01 with the given closes
func History(closes ...float64) []contracts.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]contracts.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = contracts.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return points
}

// Quote is the default quote for symbol
func Quote(symbol string) *contracts.Quote {
	return &contracts.Quote{
		Symbol:        symbol,
		CurrentPrice:  150,
		Change:        1.5,
		ChangePercent: 1.01,
		Volume:        52_000_000,
		MarketCap:     2_800_000,
		Week52Low:     120,
		Week52High:    180,
	}
}

// Prediction is the default forecast for symbol
func Prediction(symbol string) *contracts.Prediction {
	return &contracts.Prediction{
		Symbol:         symbol,
		CurrentPrice:   150,
		PredictedPrice: 153,
		Direction:      contracts.DirectionUp,
		Confidence:     0.82,
		PredictionDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Calls returns how many times op was invoked
func (g *Gateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *Gateway) record(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = make(map[string]int)
	}
	g.calls[op]++
}

func (g *Gateway) ListCompanies(ctx context.Context) ([]contracts.Company, error) {
	g.record(contracts.OpListCompanies)
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	return append([]contracts.Company{}, g.Companies...), nil
}

func (g *Gateway) GetCompany(ctx context.Context, symbol string) (*contracts.Company, error) {
	g.record(contracts.OpGetCompany)
	for _, c := range g.Companies {
		if c.Symbol == symbol {
			company := c
			return &company, nil
		}
	}
	return nil, contracts.NewServerError(contracts.OpGetCompany, 404, "Company not found")
}

func (g *Gateway) GetHistory(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error) {
	g.record(contracts.OpGetHistory)
	if g.HistoryFunc != nil {
		return g.HistoryFunc(ctx, symbol, days)
	}
	return History(100, 102, 101, 105), nil
}

func (g *Gateway) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	g.record(contracts.OpGetQuote)
	if g.QuoteFunc != nil {
		return g.QuoteFunc(ctx, symbol)
	}
	return Quote(symbol), nil
}

func (g *Gateway) GetPrediction(ctx context.Context, symbol string) (*contracts.Prediction, error) {
	g.record(contracts.OpGetPrediction)
	if g.PredictionFunc != nil {
		return g.PredictionFunc(ctx, symbol)
	}
	return Prediction(symbol), nil
}

func (g *Gateway) GetPredictionHistory(ctx context.Context, symbol string) ([]contracts.Prediction, error) {
	g.record(contracts.OpGetPredictionHistory)
	if g.PredictionHistoryFunc != nil {
		return g.PredictionHistoryFunc(ctx, symbol)
	}
	return []contracts.Prediction{*Prediction(symbol)}, nil
}

func (g *Gateway) Health(ctx context.Context) error {
	g.record(contracts.OpHealth)
	return g.HealthErr
}

// Block waits for release or ctx, whichever comes first
func Block(ctx context.Context, release <-chan struct{}) error {
	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
