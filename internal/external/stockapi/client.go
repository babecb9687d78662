package stockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/pkg/httputil"
	"github.com/vv031/Stock-Market/pkg/logger"
)

// Client is the REST gateway to the stock backend
// ⭐ SSOT: backend REST calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string // ends in /api
}

var _ contracts.Gateway = (*Client)(nil)

// NewClient creates a new backend client. baseURL is the API root, e.g.
// http://localhost:8000/api
func NewClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("stockapi"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ListCompanies fetches the full catalog
func (c *Client) ListCompanies(ctx context.Context) ([]contracts.Company, error) {
	var dtos []companyDTO
	if err := c.getJSON(ctx, contracts.OpListCompanies, c.baseURL+"/companies/", &dtos); err != nil {
		return nil, err
	}

	companies := make([]contracts.Company, 0, len(dtos))
	for _, d := range dtos {
		companies = append(companies, d.toCompany())
	}
	return companies, nil
}

// GetCompany fetches one catalog entry
func (c *Client) GetCompany(ctx context.Context, symbol string) (*contracts.Company, error) {
	var dto companyDTO
	if err := c.getJSON(ctx, contracts.OpGetCompany, c.baseURL+"/companies/"+url.PathEscape(symbol), &dto); err != nil {
		return nil, err
	}
	company := dto.toCompany()
	return &company, nil
}

// GetHistory fetches up to days trading days, sorted ascending
func (c *Client) GetHistory(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error) {
	params := url.Values{}
	params.Set("days", fmt.Sprintf("%d", days))
	fullURL := fmt.Sprintf("%s/stocks/%s/historical?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var dtos []pricePointDTO
	if err := c.getJSON(ctx, contracts.OpGetHistory, fullURL, &dtos); err != nil {
		return nil, err
	}

	points := make([]contracts.PricePoint, 0, len(dtos))
	for _, d := range dtos {
		p, err := d.toPricePoint()
		if err != nil {
			return nil, c.decodeError(contracts.OpGetHistory, err)
		}
		points = append(points, p)
	}

	contracts.SortHistory(points)
	return points, nil
}

// GetQuote fetches the current quote
func (c *Client) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	var dto quoteDTO
	if err := c.getJSON(ctx, contracts.OpGetQuote, fmt.Sprintf("%s/stocks/%s/info", c.baseURL, url.PathEscape(symbol)), &dto); err != nil {
		return nil, err
	}
	quote := dto.toQuote()
	return &quote, nil
}

// GetPrediction fetches the next-day forecast. A backend that cannot produce
// one answers 400/404/503, which maps to KindModelUnavailable.
func (c *Client) GetPrediction(ctx context.Context, symbol string) (*contracts.Prediction, error) {
	var dto predictionDTO
	if err := c.getJSON(ctx, contracts.OpGetPrediction, fmt.Sprintf("%s/predictions/%s/predict", c.baseURL, url.PathEscape(symbol)), &dto); err != nil {
		return nil, err
	}
	p, err := dto.toPrediction()
	if err != nil {
		return nil, c.decodeError(contracts.OpGetPrediction, err)
	}
	return &p, nil
}

// GetPredictionHistory fetches the most recent stored forecasts, newest first
func (c *Client) GetPredictionHistory(ctx context.Context, symbol string) ([]contracts.Prediction, error) {
	var dtos []predictionDTO
	if err := c.getJSON(ctx, contracts.OpGetPredictionHistory, fmt.Sprintf("%s/predictions/%s/history", c.baseURL, url.PathEscape(symbol)), &dtos); err != nil {
		return nil, err
	}

	predictions := make([]contracts.Prediction, 0, len(dtos))
	for _, d := range dtos {
		p, err := d.toPrediction()
		if err != nil {
			return nil, c.decodeError(contracts.OpGetPredictionHistory, err)
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}

// Health checks the backend liveness endpoint, served outside /api
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	healthURL := strings.TrimSuffix(c.baseURL, "/api") + "/health"
	if err := c.getJSON(ctx, contracts.OpHealth, healthURL, &body); err != nil {
		return err
	}
	if body.Status != "healthy" {
		return contracts.NewServerError(contracts.OpHealth, http.StatusOK, fmt.Sprintf("backend status %q", body.Status))
	}
	return nil
}

// getJSON performs a GET and decodes a 200 response into out. Every failure
// is returned as *contracts.GatewayError.
func (c *Client) getJSON(ctx context.Context, op, fullURL string, out interface{}) error {
	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"op":    op,
			"error": err.Error(),
		}).Warn("Backend unreachable")
		return contracts.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contracts.NewNetworkError(op, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		gwErr := mapStatus(op, resp.StatusCode, body)
		c.logger.WithFields(map[string]interface{}{
			"op":          op,
			"status_code": resp.StatusCode,
			"kind":        gwErr.Kind,
		}).Warn("Backend returned error")
		return gwErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return c.decodeError(op, err)
	}
	return nil
}

func (c *Client) decodeError(op string, err error) *contracts.GatewayError {
	c.logger.WithFields(map[string]interface{}{
		"op":    op,
		"error": err.Error(),
	}).Warn("Failed to decode backend response")
	return &contracts.GatewayError{
		Kind:    contracts.KindServer,
		Op:      op,
		Message: contracts.MsgServerError,
		Err:     fmt.Errorf("decode response: %w", err),
	}
}

// mapStatus turns a non-200 response into a GatewayError. The backend puts a
// human-readable reason in "detail"; validation errors carry a list there,
// which falls back to the default message.
func mapStatus(op string, status int, body []byte) *contracts.GatewayError {
	detail := parseDetail(body)

	if op == contracts.OpGetPrediction {
		switch status {
		case http.StatusBadRequest, http.StatusNotFound, http.StatusServiceUnavailable:
			return contracts.NewModelUnavailableError(op, status, detail)
		}
	}
	return contracts.NewServerError(op, status, detail)
}

func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
