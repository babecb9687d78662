package metrics

import (
	"math/big"
	"strconv"

	"github.com/vv031/Stock-Market/internal/contracts"
)

// Unit selects the breakpoint table used by ScaleMagnitude
type Unit int

const (
	// UnitCount is a plain count such as traded volume: K, M
	UnitCount Unit = iota
	// UnitCurrencyMillions is a currency amount already expressed in
	// millions, such as market cap: M, B (thousand millions), T (million millions)
	UnitCurrencyMillions
)

const (
	thousand = 1_000.0
	million  = 1_000_000.0
)

// ScaleMagnitude scales v to the unit's display suffix with one-decimal rounding.
// Counts below a thousand are returned unscaled and unrounded.
func ScaleMagnitude(v float64, unit Unit) (contracts.Magnitude, error) {
	if !isFinite(v) || v < 0 {
		return contracts.Magnitude{}, undefined("invalid magnitude %v", v)
	}

	switch unit {
	case UnitCount:
		switch {
		case v >= million:
			return contracts.Magnitude{Value: round1(v / million), Suffix: "M"}, nil
		case v >= thousand:
			return contracts.Magnitude{Value: round1(v / thousand), Suffix: "K"}, nil
		default:
			return contracts.Magnitude{Value: v}, nil
		}
	case UnitCurrencyMillions:
		switch {
		case v >= million:
			return contracts.Magnitude{Value: round1(v / million), Suffix: "T"}, nil
		case v >= thousand:
			return contracts.Magnitude{Value: round1(v / thousand), Suffix: "B"}, nil
		default:
			return contracts.Magnitude{Value: round1(v), Suffix: "M"}, nil
		}
	default:
		return contracts.Magnitude{}, undefined("unknown unit %d", unit)
	}
}

// FormatMagnitude renders m as shown on screen: "1.5M", "950", "12.0B"
func FormatMagnitude(m contracts.Magnitude) string {
	if m.Suffix == "" {
		return strconv.FormatFloat(m.Value, 'f', -1, 64)
	}
	return strconv.FormatFloat(m.Value, 'f', 1, 64) + m.Suffix
}

// round1 rounds the exact binary value of v half-up to one decimal, as the
// dashboard's toFixed(1) does: 1.15 is stored below 1.15 and gives 1.1, an
// exact tie such as 1.25 gives 1.3. v must be finite and non-negative.
func round1(v float64) float64 {
	x := new(big.Float).SetPrec(128).SetFloat64(v)
	x.Mul(x, big.NewFloat(10))
	x.Add(x, big.NewFloat(0.5))
	n, _ := x.Int(nil) // truncation is floor for non-negative x
	tenths, _ := new(big.Float).SetInt(n).Float64()
	return tenths / 10
}
