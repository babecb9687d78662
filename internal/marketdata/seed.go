package marketdata

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"
)

//go:embed seed_companies.yaml
var defaultSeed []byte

// Seed is the YAML layout accepted by LoadSeed. Prices and predictions are
// optional; companies alone make a usable catalog.
type Seed struct {
	Companies   []SeedCompany    `yaml:"companies"`
	Prices      []SeedPrice      `yaml:"prices"`
	Predictions []SeedPrediction `yaml:"predictions"`
}

// SeedCompany is one catalog row
type SeedCompany struct {
	Symbol        string  `yaml:"symbol"`
	Name          string  `yaml:"name"`
	Sector        string  `yaml:"sector"`
	MarketCap     float64 `yaml:"market_cap"`
	PERatio       float64 `yaml:"pe_ratio"`
	DividendYield float64 `yaml:"dividend_yield"`
}

// SeedPrice is one daily bar
type SeedPrice struct {
	Symbol string  `yaml:"symbol"`
	Date   string  `yaml:"date"` // YYYY-MM-DD
	Open   float64 `yaml:"open"`
	High   float64 `yaml:"high"`
	Low    float64 `yaml:"low"`
	Close  float64 `yaml:"close"`
	Volume int64   `yaml:"volume"`
}

// SeedPrediction is one stored forecast
type SeedPrediction struct {
	Symbol         string  `yaml:"symbol"`
	PredictedPrice float64 `yaml:"predicted_price"`
	Confidence     float64 `yaml:"confidence"`
	Date           string  `yaml:"date"` // YYYY-MM-DD
}

// SeedResult counts the rows written by Repository.Seed
type SeedResult struct {
	Companies   int
	Prices      int
	Predictions int
}

// SeedValidationError names the offending entry
type SeedValidationError struct {
	Field   string
	Message string
}

func (e SeedValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.&-]{1,20}$`)

// LoadSeed reads a seed file. Unknown fields fail the load so typos never
// silently drop data.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

// DefaultSeed returns the built-in catalog
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// ParseSeed decodes and validates seed YAML
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	if err := ValidateSeed(&seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

// ValidateSeed checks every row. Prices and predictions must reference a
// company of the same seed.
func ValidateSeed(seed *Seed) error {
	if len(seed.Companies) == 0 {
		return SeedValidationError{"companies", "at least one company is required"}
	}

	known := make(map[string]bool, len(seed.Companies))
	for i, c := range seed.Companies {
		field := fmt.Sprintf("companies[%d]", i)
		if !symbolPattern.MatchString(c.Symbol) {
			return SeedValidationError{field + ".symbol", fmt.Sprintf("invalid symbol %q", c.Symbol)}
		}
		if known[c.Symbol] {
			return SeedValidationError{field + ".symbol", fmt.Sprintf("duplicate symbol %s", c.Symbol)}
		}
		if c.Name == "" {
			return SeedValidationError{field + ".name", "required"}
		}
		if c.MarketCap < 0 {
			return SeedValidationError{field + ".market_cap", "must be >= 0"}
		}
		known[c.Symbol] = true
	}

	for i, p := range seed.Prices {
		field := fmt.Sprintf("prices[%d]", i)
		if !known[p.Symbol] {
			return SeedValidationError{field + ".symbol", fmt.Sprintf("unknown company %s", p.Symbol)}
		}
		if _, err := parseSeedDate(p.Date); err != nil {
			return SeedValidationError{field + ".date", err.Error()}
		}
		if p.Low > p.High {
			return SeedValidationError{field, "low must be <= high"}
		}
		if p.Close <= 0 || p.Volume < 0 {
			return SeedValidationError{field, "close must be > 0 and volume >= 0"}
		}
	}

	for i, p := range seed.Predictions {
		field := fmt.Sprintf("predictions[%d]", i)
		if !known[p.Symbol] {
			return SeedValidationError{field + ".symbol", fmt.Sprintf("unknown company %s", p.Symbol)}
		}
		if _, err := parseSeedDate(p.Date); err != nil {
			return SeedValidationError{field + ".date", err.Error()}
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			return SeedValidationError{field + ".confidence", "must be in [0, 1]"}
		}
	}

	return nil
}

func parseSeedDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Seed writes a validated seed in one transaction. Companies are upserted by
// symbol, price bars are skipped when the day already exists, predictions
// are appended.
func (r *Repository) Seed(ctx context.Context, seed *Seed) (SeedResult, error) {
	var result SeedResult

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range seed.Companies {
		batch.Queue(`
			INSERT INTO companies (symbol, name, sector, market_cap, pe_ratio, dividend_yield)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (symbol) DO UPDATE SET
				name = EXCLUDED.name,
				sector = EXCLUDED.sector,
				market_cap = EXCLUDED.market_cap,
				pe_ratio = EXCLUDED.pe_ratio,
				dividend_yield = EXCLUDED.dividend_yield
		`, c.Symbol, c.Name, c.Sector, c.MarketCap, c.PERatio, c.DividendYield)
	}
	for _, p := range seed.Prices {
		date, _ := parseSeedDate(p.Date)
		batch.Queue(`
			INSERT INTO stock_data (company_symbol, date, open_price, high_price, low_price, close_price, volume)
			SELECT $1, $2, $3, $4, $5, $6, $7
			WHERE NOT EXISTS (
				SELECT 1 FROM stock_data WHERE company_symbol = $1 AND date = $2
			)
		`, p.Symbol, date, p.Open, p.High, p.Low, p.Close, p.Volume)
	}
	for _, p := range seed.Predictions {
		date, _ := parseSeedDate(p.Date)
		batch.Queue(`
			INSERT INTO predictions (company_symbol, predicted_price, confidence, prediction_date)
			VALUES ($1, $2, $3, $4)
		`, p.Symbol, p.PredictedPrice, p.Confidence, date)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return SeedResult{}, fmt.Errorf("seed statement %d: %w", i, err)
		}
		switch {
		case i < len(seed.Companies):
			result.Companies += int(tag.RowsAffected())
		case i < len(seed.Companies)+len(seed.Prices):
			result.Prices += int(tag.RowsAffected())
		default:
			result.Predictions += int(tag.RowsAffected())
		}
	}
	if err := br.Close(); err != nil {
		return SeedResult{}, fmt.Errorf("close seed batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return SeedResult{}, fmt.Errorf("commit seed: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"companies":   result.Companies,
		"prices":      result.Prices,
		"predictions": result.Predictions,
	}).Info("Market data seeded")

	return result, nil
}
