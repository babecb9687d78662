package contracts

import (
	"fmt"
	"math"
	"time"
)

// Direction is the forecast direction reported by the model
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Prediction is a model forecast for the next trading day
type Prediction struct {
	Symbol         string    `json:"symbol"`
	CurrentPrice   float64   `json:"current_price"`
	PredictedPrice float64   `json:"predicted_price"`
	Direction      Direction `json:"price_direction"`
	Confidence     float64   `json:"confidence"` // 0.0 ~ 1.0
	PredictionDate time.Time `json:"prediction_date"`
}

// Validate checks the payload invariants. Direction is taken as given by the
// backend and only checked for being a known value.
func (p *Prediction) Validate() error {
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", p.Confidence)
	}
	if p.Direction != DirectionUp && p.Direction != DirectionDown {
		return fmt.Errorf("unknown direction %q", p.Direction)
	}
	if !isFinite(p.CurrentPrice) || !isFinite(p.PredictedPrice) {
		return fmt.Errorf("non-finite price")
	}
	return nil
}

// PredictionStatus tells whether a forecast is present for the current selection
type PredictionStatus string

const (
	// PredictionPending: selected, outcome of the optional fetch not known yet
	PredictionPending     PredictionStatus = "pending"
	PredictionAvailable   PredictionStatus = "available"
	PredictionUnavailable PredictionStatus = "unavailable"
)

// PredictionState is either a Prediction or the Unavailable variant.
// Unavailable is not an error.
type PredictionState struct {
	Status     PredictionStatus `json:"status"`
	Prediction *Prediction      `json:"prediction,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// Available wraps a prediction
func Available(p Prediction) PredictionState {
	return PredictionState{Status: PredictionAvailable, Prediction: &p}
}

// Unavailable builds the degraded variant with a human-readable reason
func Unavailable(reason string) PredictionState {
	return PredictionState{Status: PredictionUnavailable, Reason: reason}
}

// Pending is the state between a selection and its prediction outcome
func Pending() PredictionState {
	return PredictionState{Status: PredictionPending}
}

// IsAvailable reports whether a forecast can be shown
func (s PredictionState) IsAvailable() bool {
	return s.Status == PredictionAvailable && s.Prediction != nil
}

// Clone returns a copy that shares no pointers with s
func (s PredictionState) Clone() PredictionState {
	if s.Prediction != nil {
		p := *s.Prediction
		s.Prediction = &p
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
