// Package metrics derives every numeric value the dashboard displays from the
// raw gateway entities. Functions are pure and deterministic.
//
// Inputs outside a function's domain (negative prices, a zero current price
// for potential return, NaN) yield an error wrapping ErrUndefined instead of
// NaN or a panic. The renderer omits such metrics.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/vv031/Stock-Market/internal/contracts"
)

// ErrUndefined marks a metric that cannot be computed for the given input
var ErrUndefined = errors.New("metric undefined")

// Metric names reported in MarketMetrics/ForecastMetrics.Undefined
const (
	MetricPriceChange     = "price_change"
	MetricRangePosition   = "range_position"
	MetricVolume          = "volume"
	MetricMarketCap       = "market_cap"
	MetricPotentialReturn = "potential_return"
)

// Confidence tier thresholds (inclusive lower bound)
const (
	HighConfidence   = 0.8
	MediumConfidence = 0.6
)

// rangeMidpoint is reported when the 52-week range is degenerate
const rangeMidpoint = 50.0

// Change is the movement across a price series
type Change struct {
	Absolute float64
	Percent  float64
}

func undefined(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUndefined, fmt.Sprintf(format, args...))
}

// PriceChange returns last.Close - first.Close and its percentage of
// first.Close. The percentage is 0 when first.Close is 0.
func PriceChange(history []contracts.PricePoint) (Change, error) {
	if len(history) == 0 {
		return Change{}, undefined("empty history")
	}

	first := history[0].Close
	last := history[len(history)-1].Close
	if !isFinite(first) || !isFinite(last) || first < 0 || last < 0 {
		return Change{}, undefined("invalid close prices first=%v last=%v", first, last)
	}

	c := Change{Absolute: last - first}
	if first > 0 {
		c.Percent = c.Absolute / first * 100
	}
	return c, nil
}

// PotentialReturn is the forecast move as a percentage of the current price
func PotentialReturn(p contracts.Prediction) (float64, error) {
	if !isFinite(p.CurrentPrice) || !isFinite(p.PredictedPrice) {
		return 0, undefined("non-finite prices")
	}
	if p.CurrentPrice <= 0 {
		return 0, undefined("current price %v must be positive", p.CurrentPrice)
	}
	if p.PredictedPrice < 0 {
		return 0, undefined("negative predicted price %v", p.PredictedPrice)
	}
	return (p.PredictedPrice - p.CurrentPrice) / p.CurrentPrice * 100, nil
}

// ConfidenceTier classifies a confidence in [0,1]
func ConfidenceTier(confidence float64) contracts.Tier {
	switch {
	case confidence >= HighConfidence:
		return contracts.TierHigh
	case confidence >= MediumConfidence:
		return contracts.TierMedium
	default:
		return contracts.TierLow
	}
}

// RangePosition places current within [low, high] as a percentage clamped to
// [0, 100]. A degenerate range (high == low) yields 50 for any current.
func RangePosition(current, low, high float64) (float64, error) {
	if !isFinite(low) || !isFinite(high) || low < 0 || high < 0 {
		return 0, undefined("invalid range low=%v high=%v", low, high)
	}
	if high == low {
		return rangeMidpoint, nil
	}
	if high < low {
		return 0, undefined("high %v below low %v", high, low)
	}
	if !isFinite(current) || current < 0 {
		return 0, undefined("invalid current price %v", current)
	}

	pos := (current - low) / (high - low) * 100
	return math.Max(0, math.Min(100, pos)), nil
}

// DisplayDirection derives the direction from the sign of predicted - current.
// The raw Prediction.Direction is left untouched.
func DisplayDirection(p contracts.Prediction) contracts.Direction {
	if p.PredictedPrice > p.CurrentPrice {
		return contracts.DirectionUp
	}
	return contracts.DirectionDown
}

// Outcome labels the forecast move
func Outcome(p contracts.Prediction) string {
	if DisplayDirection(p) == contracts.DirectionUp {
		return "Gain"
	}
	return "Loss"
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
