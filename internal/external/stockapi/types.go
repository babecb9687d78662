package stockapi

import (
	"fmt"
	"time"

	"github.com/vv031/Stock-Market/internal/contracts"
)

// Backend dates are calendar days; some deployments send full timestamps
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

type companyDTO struct {
	ID            int     `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
}

func (d companyDTO) toCompany() contracts.Company {
	return contracts.Company{
		Symbol:        d.Symbol,
		Name:          d.Name,
		Sector:        d.Sector,
		MarketCap:     d.MarketCap,
		PERatio:       d.PERatio,
		DividendYield: d.DividendYield,
	}
}

type pricePointDTO struct {
	Date       string  `json:"date"`
	OpenPrice  float64 `json:"open_price"`
	HighPrice  float64 `json:"high_price"`
	LowPrice   float64 `json:"low_price"`
	ClosePrice float64 `json:"close_price"`
	Volume     int64   `json:"volume"`
}

func (d pricePointDTO) toPricePoint() (contracts.PricePoint, error) {
	date, err := parseDate(d.Date)
	if err != nil {
		return contracts.PricePoint{}, err
	}
	return contracts.PricePoint{
		Date:   date,
		Open:   d.OpenPrice,
		High:   d.HighPrice,
		Low:    d.LowPrice,
		Close:  d.ClosePrice,
		Volume: d.Volume,
	}, nil
}

type quoteDTO struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
	Week52High    float64 `json:"week_52_high"`
	Week52Low     float64 `json:"week_52_low"`
}

func (d quoteDTO) toQuote() contracts.Quote {
	return contracts.Quote{
		Symbol:        d.Symbol,
		CurrentPrice:  d.CurrentPrice,
		Change:        d.Change,
		ChangePercent: d.ChangePercent,
		Volume:        d.Volume,
		MarketCap:     d.MarketCap,
		PERatio:       d.PERatio,
		DividendYield: d.DividendYield,
		Week52Low:     d.Week52Low,
		Week52High:    d.Week52High,
	}
}

type predictionDTO struct {
	Symbol         string  `json:"symbol"`
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
	PredictionDate string  `json:"prediction_date"`
	CurrentPrice   float64 `json:"current_price"`
	PriceDirection string  `json:"price_direction"`
}

// toPrediction converts the payload as-is; range checks belong to
// contracts.Prediction.Validate
func (d predictionDTO) toPrediction() (contracts.Prediction, error) {
	p := contracts.Prediction{
		Symbol:         d.Symbol,
		CurrentPrice:   d.CurrentPrice,
		PredictedPrice: d.PredictedPrice,
		Direction:      contracts.Direction(d.PriceDirection),
		Confidence:     d.Confidence,
	}
	if d.PredictionDate != "" {
		date, err := parseDate(d.PredictionDate)
		if err != nil {
			return contracts.Prediction{}, err
		}
		p.PredictionDate = date
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
