package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/internal/metrics"
	"github.com/vv031/Stock-Market/internal/selection"
	"github.com/vv031/Stock-Market/pkg/logger"
)

// Selector is the selection controller as seen by the API
type Selector interface {
	LoadCatalog(ctx context.Context) ([]contracts.Company, error)
	SelectCompany(symbol string) error
	State() contracts.ViewState
	Subscribe() (<-chan contracts.ViewState, func())
}

// DashboardHandler serves the catalog, the selection and its view-state
// ⭐ SSOT: dashboard REST handlers live in this struct
type DashboardHandler struct {
	selector Selector
	gateway  contracts.Gateway
	logger   *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(selector Selector, gw contracts.Gateway, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		selector: selector,
		gateway:  gw,
		logger:   log,
	}
}

// ViewResponse is a ViewState plus display strings for scaled magnitudes
type ViewResponse struct {
	contracts.ViewState
	Display *DisplayValues `json:"display,omitempty"`
}

// DisplayValues are pre-formatted metric strings, empty when undefined
type DisplayValues struct {
	Volume    string `json:"volume,omitempty"`
	MarketCap string `json:"market_cap,omitempty"`
}

func newViewResponse(s contracts.ViewState) ViewResponse {
	resp := ViewResponse{ViewState: s}
	if s.Market != nil {
		d := &DisplayValues{}
		if s.Market.IsDefined(metrics.MetricVolume) {
			d.Volume = metrics.FormatMagnitude(s.Market.Volume)
		}
		if s.Market.IsDefined(metrics.MetricMarketCap) {
			d.MarketCap = metrics.FormatMagnitude(s.Market.MarketCap)
		}
		resp.Display = d
	}
	return resp
}

// GetCompanies returns the catalog
// GET /api/companies
func (h *DashboardHandler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.selector.LoadCatalog(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get companies")
		respondGatewayError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"companies": companies,
		"count":     len(companies),
	})
}

// Select starts loading a company. The response is the Loading state; the
// outcome arrives through GET /api/view or /ws/view.
// POST /api/selection/{symbol}
func (h *DashboardHandler) Select(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	err := h.selector.SelectCompany(symbol)
	switch {
	case errors.Is(err, selection.ErrCatalogNotLoaded):
		respondError(w, http.StatusConflict, "Company catalog not loaded")
		return
	case errors.Is(err, selection.ErrUnknownCompany):
		respondError(w, http.StatusNotFound, "Company not found")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to select company")
		respondError(w, http.StatusInternalServerError, "Failed to select company")
		return
	}

	respondJSON(w, http.StatusAccepted, newViewResponse(h.selector.State()))
}

// GetView returns the current view-state
// GET /api/view
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newViewResponse(h.selector.State()))
}

// GetPredictionHistory returns stored forecasts for a symbol
// GET /api/predictions/{symbol}/history
func (h *DashboardHandler) GetPredictionHistory(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	predictions, err := h.gateway.GetPredictionHistory(r.Context(), symbol)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		}).Warn("Failed to get prediction history")
		respondGatewayError(w, err)
		return
	}
	if predictions == nil {
		predictions = []contracts.Prediction{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":      symbol,
		"predictions": predictions,
	})
}
