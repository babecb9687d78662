package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv031/Stock-Market/internal/contracts"
)

func closes(values ...float64) []contracts.PricePoint {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]contracts.PricePoint, len(values))
	for i, v := range values {
		points[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: v}
	}
	return points
}

func TestPriceChange(t *testing.T) {
	tests := []struct {
		name        string
		history     []contracts.PricePoint
		wantAbs     float64
		wantPercent float64
	}{
		{"rise", closes(100, 110), 10, 10},
		{"fall", closes(200, 150, 150), -50, -25},
		{"single point", closes(42), 0, 0},
		{"zero first close", closes(0, 25), 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PriceChange(tt.history)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantAbs, got.Absolute, 1e-9)
			assert.InDelta(t, tt.wantPercent, got.Percent, 1e-9)
			assert.False(t, math.IsNaN(got.Percent))
		})
	}
}

func TestPriceChange_Undefined(t *testing.T) {
	tests := []struct {
		name    string
		history []contracts.PricePoint
	}{
		{"empty", nil},
		{"negative first close", closes(-1, 10)},
		{"negative last close", closes(10, -1)},
		{"nan close", closes(math.NaN(), 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PriceChange(tt.history)
			assert.ErrorIs(t, err, ErrUndefined)
		})
	}
}

func TestPotentialReturn(t *testing.T) {
	got, err := PotentialReturn(contracts.Prediction{CurrentPrice: 100, PredictedPrice: 90})
	require.NoError(t, err)
	assert.InDelta(t, -10.0, got, 1e-9)

	got, err = PotentialReturn(contracts.Prediction{CurrentPrice: 200, PredictedPrice: 210})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-9)
}

func TestPotentialReturn_Undefined(t *testing.T) {
	tests := []struct {
		name string
		p    contracts.Prediction
	}{
		{"zero current price", contracts.Prediction{CurrentPrice: 0, PredictedPrice: 10}},
		{"negative current price", contracts.Prediction{CurrentPrice: -5, PredictedPrice: 10}},
		{"negative predicted price", contracts.Prediction{CurrentPrice: 5, PredictedPrice: -1}},
		{"infinite predicted price", contracts.Prediction{CurrentPrice: 5, PredictedPrice: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PotentialReturn(tt.p)
			assert.ErrorIs(t, err, ErrUndefined)
		})
	}
}

func TestConfidenceTier(t *testing.T) {
	tests := []struct {
		confidence float64
		want       contracts.Tier
	}{
		{1.0, contracts.TierHigh},
		{0.8, contracts.TierHigh},
		{0.79999, contracts.TierMedium},
		{0.75, contracts.TierMedium},
		{0.6, contracts.TierMedium},
		{0.59999, contracts.TierLow},
		{0.0, contracts.TierLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidenceTier(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		name                string
		current, low, high  float64
		want                float64
	}{
		{"inside", 150, 100, 200, 50},
		{"at low", 100, 100, 200, 0},
		{"at high", 200, 100, 200, 100},
		{"below low clamps", 50, 100, 200, 0},
		{"above high clamps", 500, 100, 200, 100},
		{"quarter", 125, 100, 200, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RangePosition(tt.current, tt.low, tt.high)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRangePosition_AlwaysWithinBounds(t *testing.T) {
	for current := 0.0; current <= 1000; current += 7.5 {
		got, err := RangePosition(current, 300, 600)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestRangePosition_DegenerateRange(t *testing.T) {
	for _, current := range []float64{-10, 0, 50, 100, 150, 1e9} {
		got, err := RangePosition(current, 100, 100)
		require.NoError(t, err)
		assert.Equal(t, 50.0, got, "current %v", current)
	}
}

func TestRangePosition_Undefined(t *testing.T) {
	tests := []struct {
		name               string
		current, low, high float64
	}{
		{"inverted range", 150, 200, 100},
		{"negative low", 150, -1, 100},
		{"negative current", -5, 100, 200},
		{"nan current", math.NaN(), 100, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RangePosition(tt.current, tt.low, tt.high)
			assert.ErrorIs(t, err, ErrUndefined)
		})
	}
}

func TestDisplayDirection(t *testing.T) {
	down := contracts.Prediction{CurrentPrice: 100, PredictedPrice: 90, Direction: contracts.DirectionUp}
	assert.Equal(t, contracts.DirectionDown, DisplayDirection(down))
	assert.Equal(t, "Loss", Outcome(down))
	// raw value is never rewritten
	assert.Equal(t, contracts.DirectionUp, down.Direction)

	up := contracts.Prediction{CurrentPrice: 100, PredictedPrice: 101}
	assert.Equal(t, contracts.DirectionUp, DisplayDirection(up))
	assert.Equal(t, "Gain", Outcome(up))

	flat := contracts.Prediction{CurrentPrice: 100, PredictedPrice: 100}
	assert.Equal(t, contracts.DirectionDown, DisplayDirection(flat))
}
