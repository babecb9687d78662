package metrics

import (
	"github.com/vv031/Stock-Market/internal/contracts"
)

// Market computes the market metrics of one successful load. A metric whose
// input is out of domain is left zero and listed in Undefined.
func Market(history []contracts.PricePoint, quote *contracts.Quote) *contracts.MarketMetrics {
	m := &contracts.MarketMetrics{}

	if change, err := PriceChange(history); err == nil {
		m.PriceChange = change.Absolute
		m.ChangePercent = change.Percent
	} else {
		m.Undefined = append(m.Undefined, MetricPriceChange)
	}

	if quote == nil {
		m.Undefined = append(m.Undefined, MetricRangePosition, MetricVolume, MetricMarketCap)
		return m
	}

	if pos, err := RangePosition(quote.CurrentPrice, quote.Week52Low, quote.Week52High); err == nil {
		m.RangePosition = pos
	} else {
		m.Undefined = append(m.Undefined, MetricRangePosition)
	}

	if vol, err := ScaleMagnitude(float64(quote.Volume), UnitCount); err == nil {
		m.Volume = vol
	} else {
		m.Undefined = append(m.Undefined, MetricVolume)
	}

	if mcap, err := ScaleMagnitude(quote.MarketCap, UnitCurrencyMillions); err == nil {
		m.MarketCap = mcap
	} else {
		m.Undefined = append(m.Undefined, MetricMarketCap)
	}

	return m
}

// Forecast computes the forecast metrics, or nil when no prediction is available
func Forecast(state contracts.PredictionState) *contracts.ForecastMetrics {
	if !state.IsAvailable() {
		return nil
	}
	p := *state.Prediction

	f := &contracts.ForecastMetrics{
		Tier:             ConfidenceTier(p.Confidence),
		DisplayDirection: DisplayDirection(p),
		Outcome:          Outcome(p),
	}

	if ret, err := PotentialReturn(p); err == nil {
		f.PotentialReturn = ret
	} else {
		f.Undefined = append(f.Undefined, MetricPotentialReturn)
	}

	return f
}
