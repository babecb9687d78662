package contracts

import (
	"sort"
	"time"
)

// Company is one entry of the reference catalog
// ⭐ SSOT: catalog entry shared by every gateway and the controller
type Company struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	MarketCap     float64 `json:"market_cap"` // millions of the quote currency
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
}

// PricePoint is one trading day of the historical series
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote is the instantaneous state of a symbol at fetch time
type Quote struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
	Week52Low     float64 `json:"week_52_low"`
	Week52High    float64 `json:"week_52_high"`
}

// SortHistory orders points chronologically ascending, in place.
// Backends may answer newest-first.
func SortHistory(points []PricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
}

// CloneHistory returns an independent copy of points
func CloneHistory(points []PricePoint) []PricePoint {
	if points == nil {
		return nil
	}
	out := make([]PricePoint, len(points))
	copy(out, points)
	return out
}
