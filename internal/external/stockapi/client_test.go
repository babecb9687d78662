package stockapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/pkg/config"
	"github.com/vv031/Stock-Market/pkg/httputil"
	"github.com/vv031/Stock-Market/pkg/logger"
)

// newBackend serves canned responses on the backend's routes
func newBackend(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	})
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/companies/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":1,"symbol":"RELIANCE","name":"Reliance Industries Ltd","sector":"Oil & Gas","market_cap":1500000.0,"pe_ratio":25.5,"dividend_yield":0.8},
			{"id":2,"symbol":"TCS","name":"Tata Consultancy Services Ltd","sector":"IT","market_cap":1200000.0,"pe_ratio":30.2,"dividend_yield":1.2}
		]`))
	})
	api.HandleFunc("/companies/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["symbol"] != "TCS" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Company not found"}`))
			return
		}
		w.Write([]byte(`{"id":2,"symbol":"TCS","name":"Tata Consultancy Services Ltd","sector":"IT","market_cap":1200000.0,"pe_ratio":30.2,"dividend_yield":1.2}`))
	})
	api.HandleFunc("/stocks/{symbol}/historical", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		// newest first
		w.Write([]byte(`[
			{"date":"2024-01-03","open_price":3,"high_price":3.5,"low_price":2.5,"close_price":3,"volume":300},
			{"date":"2024-01-02","open_price":2,"high_price":2.5,"low_price":1.5,"close_price":2,"volume":200},
			{"date":"2024-01-01","open_price":1,"high_price":1.5,"low_price":0.5,"close_price":1,"volume":100}
		]`))
	})
	api.HandleFunc("/stocks/{symbol}/info", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["symbol"] == "BROKEN" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`Internal Server Error`))
			return
		}
		w.Write([]byte(`{"symbol":"TCS","current_price":3500.5,"change":12.5,"change_percent":0.36,"volume":1250000,"market_cap":1200000.0,"pe_ratio":30.2,"dividend_yield":1.2,"week_52_high":3900,"week_52_low":3100}`))
	})
	api.HandleFunc("/predictions/{symbol}/predict", func(w http.ResponseWriter, r *http.Request) {
		switch mux.Vars(r)["symbol"] {
		case "EMPTY":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"No stock data available for prediction"}`))
		case "DOWN":
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{}`))
		case "FAIL":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"model crashed"}`))
		default:
			w.Write([]byte(`{"symbol":"TCS","predicted_price":3550.25,"confidence":0.812,"prediction_date":"2024-01-04","current_price":3500.5,"price_direction":"UP"}`))
		}
	})
	api.HandleFunc("/predictions/{symbol}/history", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"symbol":"TCS","predicted_price":3550.25,"confidence":0.812,"prediction_date":"2024-01-04","current_price":3500.5,"price_direction":"UP"},
			{"symbol":"TCS","predicted_price":3400,"confidence":0.7,"prediction_date":"2024-01-03","current_price":3500.5,"price_direction":"DOWN"}
		]`))
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	cfg := &config.Config{Gateway: config.GatewayConfig{FetchTimeout: time.Second}}
	return server, NewClient(server.URL+"/api/", httputil.New(cfg, logger.Nop()), logger.Nop())
}

func TestListCompanies(t *testing.T) {
	_, c := newBackend(t)

	companies, err := c.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "RELIANCE", companies[0].Symbol)
	assert.Equal(t, "Oil & Gas", companies[0].Sector)
	assert.Equal(t, 1500000.0, companies[0].MarketCap)
}

func TestGetCompany(t *testing.T) {
	_, c := newBackend(t)

	company, err := c.GetCompany(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, "Tata Consultancy Services Ltd", company.Name)

	_, err = c.GetCompany(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, "Company not found", err.Error())
	assert.True(t, contracts.IsKind(err, contracts.KindServer))
}

func TestGetHistory_SortedAscending(t *testing.T) {
	_, c := newBackend(t)

	points, err := c.GetHistory(context.Background(), "TCS", 30)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 1.0, points[0].Close)
	assert.Equal(t, 3.0, points[2].Close)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, int64(300), points[2].Volume)
}

func TestGetQuote(t *testing.T) {
	_, c := newBackend(t)

	q, err := c.GetQuote(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, 3500.5, q.CurrentPrice)
	assert.Equal(t, int64(1250000), q.Volume)
	assert.Equal(t, 3100.0, q.Week52Low)
	assert.Equal(t, 3900.0, q.Week52High)
}

func TestGetQuote_ServerErrorWithoutDetail(t *testing.T) {
	_, c := newBackend(t)

	_, err := c.GetQuote(context.Background(), "BROKEN")
	require.Error(t, err)
	assert.Equal(t, contracts.MsgServerError, err.Error())

	var gwErr *contracts.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusInternalServerError, gwErr.StatusCode)
	assert.Equal(t, contracts.OpGetQuote, gwErr.Op)
}

func TestGetPrediction(t *testing.T) {
	_, c := newBackend(t)

	p, err := c.GetPrediction(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, contracts.DirectionUp, p.Direction)
	assert.Equal(t, 0.812, p.Confidence)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), p.PredictionDate)
	assert.NoError(t, p.Validate())
}

func TestGetPrediction_ErrorMapping(t *testing.T) {
	_, c := newBackend(t)

	tests := []struct {
		symbol  string
		kind    contracts.ErrorKind
		message string
	}{
		{"EMPTY", contracts.KindModelUnavailable, "No stock data available for prediction"},
		{"DOWN", contracts.KindModelUnavailable, contracts.MsgModelUnavailable},
		{"FAIL", contracts.KindServer, "model crashed"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			_, err := c.GetPrediction(context.Background(), tt.symbol)
			require.Error(t, err)
			assert.True(t, contracts.IsKind(err, tt.kind))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestGetPredictionHistory(t *testing.T) {
	_, c := newBackend(t)

	history, err := c.GetPredictionHistory(context.Background(), "TCS")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, contracts.DirectionDown, history[1].Direction)
}

func TestHealth(t *testing.T) {
	_, c := newBackend(t)
	assert.NoError(t, c.Health(context.Background()))
}

func TestNetworkError(t *testing.T) {
	server, c := newBackend(t)
	server.Close()

	_, err := c.ListCompanies(context.Background())
	require.Error(t, err)
	assert.Equal(t, contracts.MsgNetworkError, err.Error())
	assert.True(t, contracts.IsKind(err, contracts.KindNetwork))
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	cfg := &config.Config{Gateway: config.GatewayConfig{FetchTimeout: 50 * time.Millisecond}}
	c := NewClient(server.URL+"/api", httputil.New(cfg, logger.Nop()), logger.Nop())

	_, err := c.GetQuote(context.Background(), "TCS")
	require.Error(t, err)
	assert.True(t, contracts.IsKind(err, contracts.KindNetwork))
}

func TestParseDetail(t *testing.T) {
	assert.Equal(t, "boom", parseDetail([]byte(`{"detail":"boom"}`)))
	assert.Empty(t, parseDetail([]byte(`{"detail":[{"loc":["query","days"],"msg":"not an int"}]}`)))
	assert.Empty(t, parseDetail([]byte(`<html>`)))
	assert.Empty(t, parseDetail(nil))
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())

	_, err = parseDate("2024-03-05T10:00:00")
	assert.NoError(t, err)

	_, err = parseDate("05/03/2024")
	assert.Error(t, err)
}
