package contracts

// Phase is the load phase of the current selection
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// ViewState is everything the renderer needs for one frame.
// ⭐ SSOT: produced only by the selection reducer
type ViewState struct {
	Selected     *Company         `json:"selected,omitempty"`
	Phase        Phase            `json:"phase"`
	History      []PricePoint     `json:"history"`
	Quote        *Quote           `json:"quote,omitempty"`
	Prediction   PredictionState  `json:"prediction"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Generation   uint64           `json:"generation"`
	Market       *MarketMetrics   `json:"market_metrics,omitempty"`
	Forecast     *ForecastMetrics `json:"forecast_metrics,omitempty"`
}

// NewViewState returns the initial Idle state
func NewViewState() ViewState {
	return ViewState{Phase: PhaseIdle, Prediction: Pending()}
}

// Clone returns a deep copy safe to hand to other goroutines
func (v ViewState) Clone() ViewState {
	out := v
	if v.Selected != nil {
		c := *v.Selected
		out.Selected = &c
	}
	out.History = CloneHistory(v.History)
	if v.Quote != nil {
		q := *v.Quote
		out.Quote = &q
	}
	out.Prediction = v.Prediction.Clone()
	if v.Market != nil {
		m := *v.Market
		m.Undefined = append([]string(nil), v.Market.Undefined...)
		out.Market = &m
	}
	if v.Forecast != nil {
		f := *v.Forecast
		f.Undefined = append([]string(nil), v.Forecast.Undefined...)
		out.Forecast = &f
	}
	return out
}

// Settled reports whether nothing more is expected for the current generation
func (v ViewState) Settled() bool {
	switch v.Phase {
	case PhaseError:
		// catalog failure: no selection, nothing in flight
		if v.Selected == nil {
			return true
		}
		return v.Prediction.Status != PredictionPending
	case PhaseReady:
		return v.Prediction.Status != PredictionPending
	case PhaseIdle:
		return true
	default:
		return false
	}
}

// Tier is a discrete confidence classification
type Tier string

const (
	TierHigh   Tier = "High"
	TierMedium Tier = "Medium"
	TierLow    Tier = "Low"
)

// Magnitude is a value scaled to a display unit, e.g. {1.5, "M"}
type Magnitude struct {
	Value  float64 `json:"value"`
	Suffix string  `json:"suffix"`
}

// MarketMetrics are derived from the history and quote of one load.
// Metrics whose inputs are out of domain are zero and named in Undefined;
// the renderer omits them.
type MarketMetrics struct {
	PriceChange   float64   `json:"price_change"`
	ChangePercent float64   `json:"change_percent"`
	RangePosition float64   `json:"range_position"` // 0 ~ 100
	Volume        Magnitude `json:"volume"`
	MarketCap     Magnitude `json:"market_cap"`
	Undefined     []string  `json:"undefined,omitempty"`
}

// ForecastMetrics are derived from an available prediction
type ForecastMetrics struct {
	PotentialReturn  float64   `json:"potential_return"` // percent
	Tier             Tier      `json:"tier"`
	DisplayDirection Direction `json:"display_direction"`
	Outcome          string    `json:"outcome"` // Gain / Loss
	Undefined        []string  `json:"undefined,omitempty"`
}

// IsDefined reports whether name was computable
func (m *MarketMetrics) IsDefined(name string) bool {
	return !contains(m.Undefined, name)
}

// IsDefined reports whether name was computable
func (f *ForecastMetrics) IsDefined(name string) bool {
	return !contains(f.Undefined, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
