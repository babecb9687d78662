package selection

import (
	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/internal/metrics"
)

// Event is an input to Reduce
type Event interface {
	isEvent()
}

// Selected starts a new generation for Company
type Selected struct {
	Company contracts.Company
}

// RequiredResolved carries the joined history+quote of a generation
type RequiredResolved struct {
	Generation uint64
	History    []contracts.PricePoint
	Quote      contracts.Quote
}

// RequiredFailed carries the first error of a generation's required group
type RequiredFailed struct {
	Generation uint64
	Message    string
}

// PredictionResolved carries the optional group outcome of a generation
type PredictionResolved struct {
	Generation uint64
	Prediction contracts.PredictionState
}

// CatalogFailed reports that the company catalog could not be loaded
type CatalogFailed struct {
	Message string
}

// CatalogLoaded reports a successful catalog load
type CatalogLoaded struct{}

func (Selected) isEvent()           {}
func (RequiredResolved) isEvent()   {}
func (RequiredFailed) isEvent()     {}
func (PredictionResolved) isEvent() {}
func (CatalogFailed) isEvent()      {}
func (CatalogLoaded) isEvent()      {}

// Reduce returns the state that follows s after ev. It never mutates s.
// Results tagged with a generation other than s.Generation are stale and
// leave the state unchanged; stale reports whether that happened.
func Reduce(s contracts.ViewState, ev Event) (next contracts.ViewState, stale bool) {
	next = s.Clone()

	switch e := ev.(type) {
	case Selected:
		company := e.Company
		next.Generation = s.Generation + 1
		next.Selected = &company
		next.Phase = contracts.PhaseLoading
		next.ErrorMessage = ""
		next.Prediction = contracts.Pending()
		next.Forecast = nil

	case RequiredResolved:
		if isStale(s, e.Generation) {
			return s, true
		}
		quote := e.Quote
		next.History = contracts.CloneHistory(e.History)
		next.Quote = &quote
		next.Market = metrics.Market(next.History, next.Quote)
		next.Phase = contracts.PhaseReady

	case RequiredFailed:
		if isStale(s, e.Generation) {
			return s, true
		}
		// history/quote keep the previously shown values
		next.Phase = contracts.PhaseError
		next.ErrorMessage = e.Message

	case PredictionResolved:
		if isStale(s, e.Generation) {
			return s, true
		}
		next.Prediction = e.Prediction.Clone()
		next.Forecast = metrics.Forecast(next.Prediction)

	case CatalogFailed:
		next.Phase = contracts.PhaseError
		next.ErrorMessage = e.Message

	case CatalogLoaded:
		// only a catalog failure is cleared; a selection's Error stays
		if s.Selected == nil && s.Phase == contracts.PhaseError {
			next.Phase = contracts.PhaseIdle
			next.ErrorMessage = ""
		}
	}

	return next, false
}

// isStale: generation 0 belongs to no selection
func isStale(s contracts.ViewState, generation uint64) bool {
	return s.Selected == nil || generation != s.Generation
}
