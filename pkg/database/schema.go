package database

import (
	"context"
	"fmt"
)

// schema is the market data layout shared with the stock backend. Every
// statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id             SERIAL PRIMARY KEY,
		symbol         VARCHAR(20) NOT NULL UNIQUE,
		name           VARCHAR(200) NOT NULL,
		sector         VARCHAR(100) NOT NULL DEFAULT '',
		market_cap     DOUBLE PRECISION NOT NULL DEFAULT 0,
		pe_ratio       DOUBLE PRECISION NOT NULL DEFAULT 0,
		dividend_yield DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS stock_data (
		id             SERIAL PRIMARY KEY,
		company_symbol VARCHAR(20) NOT NULL REFERENCES companies(symbol),
		date           TIMESTAMP NOT NULL,
		open_price     DOUBLE PRECISION NOT NULL,
		high_price     DOUBLE PRECISION NOT NULL,
		low_price      DOUBLE PRECISION NOT NULL,
		close_price    DOUBLE PRECISION NOT NULL,
		volume         BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_data_symbol_date ON stock_data (company_symbol, date DESC)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id              SERIAL PRIMARY KEY,
		company_symbol  VARCHAR(20) NOT NULL REFERENCES companies(symbol),
		predicted_price DOUBLE PRECISION NOT NULL,
		confidence      DOUBLE PRECISION NOT NULL,
		prediction_date TIMESTAMP NOT NULL,
		created_at      TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_symbol_created ON predictions (company_symbol, created_at DESC)`,
}

// EnsureSchema creates the market data tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
