package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/internal/contracts/contractstest"
)

var (
	apple     = contracts.Company{Symbol: "AAPL", Name: "Apple Inc."}
	microsoft = contracts.Company{Symbol: "MSFT", Name: "Microsoft Corporation"}
)

func reduce(t *testing.T, s contracts.ViewState, ev Event) contracts.ViewState {
	t.Helper()
	next, stale := Reduce(s, ev)
	require.False(t, stale, "unexpected stale event %T", ev)
	return next
}

func TestReduce_Selected(t *testing.T) {
	s := reduce(t, contracts.NewViewState(), Selected{Company: apple})

	assert.Equal(t, uint64(1), s.Generation)
	assert.Equal(t, contracts.PhaseLoading, s.Phase)
	assert.Equal(t, "AAPL", s.Selected.Symbol)
	assert.Equal(t, contracts.PredictionPending, s.Prediction.Status)

	s = reduce(t, s, Selected{Company: apple})
	assert.Equal(t, uint64(2), s.Generation, "reselect starts a new generation")
}

func TestReduce_SelectedClearsErrorAndForecast(t *testing.T) {
	s := reduce(t, contracts.NewViewState(), Selected{Company: apple})
	s = reduce(t, s, PredictionResolved{Generation: 1, Prediction: contracts.Available(*contractstest.Prediction("AAPL"))})
	s = reduce(t, s, RequiredFailed{Generation: 1, Message: "Stock not found"})
	require.NotNil(t, s.Forecast)

	s = reduce(t, s, Selected{Company: microsoft})
	assert.Empty(t, s.ErrorMessage)
	assert.Nil(t, s.Forecast)
	assert.Equal(t, contracts.PredictionPending, s.Prediction.Status)
}

func TestReduce_RequiredResolved(t *testing.T) {
	s := reduce(t, contracts.NewViewState(), Selected{Company: apple})
	s = reduce(t, s, RequiredResolved{
		Generation: 1,
		History:    contractstest.History(100, 110),
		Quote:      *contractstest.Quote("AAPL"),
	})

	assert.Equal(t, contracts.PhaseReady, s.Phase)
	assert.Len(t, s.History, 2)
	require.NotNil(t, s.Market)
	assert.InDelta(t, 10.0, s.Market.PriceChange, 1e-9)
	assert.Equal(t, contracts.PredictionPending, s.Prediction.Status)
	assert.False(t, s.Settled())
}

func TestReduce_RequiredFailedKeepsPreviousData(t *testing.T) {
	s := reduce(t, contracts.NewViewState(), Selected{Company: apple})
	s = reduce(t, s, RequiredResolved{Generation: 1, History: contractstest.History(1, 2), Quote: *contractstest.Quote("AAPL")})
	s = reduce(t, s, Selected{Company: microsoft})
	s = reduce(t, s, RequiredFailed{Generation: 2, Message: "Stock not found"})

	assert.Equal(t, contracts.PhaseError, s.Phase)
	assert.Equal(t, "Stock not found", s.ErrorMessage)
	assert.Len(t, s.History, 2)
	assert.NotNil(t, s.Quote)
}

func TestReduce_StaleEvents(t *testing.T) {
	s := reduce(t, contracts.NewViewState(), Selected{Company: apple})
	s = reduce(t, s, Selected{Company: microsoft})

	events := []Event{
		RequiredResolved{Generation: 1, History: contractstest.History(1)},
		RequiredFailed{Generation: 1, Message: "old"},
		PredictionResolved{Generation: 1, Prediction: contracts.Unavailable("old")},
		RequiredResolved{Generation: 3},
	}
	for _, ev := range events {
		next, stale := Reduce(s, ev)
		assert.True(t, stale, "%T", ev)
		assert.Equal(t, s, next)
	}
}

func TestReduce_ResultsBeforeAnySelectionAreStale(t *testing.T) {
	_, stale := Reduce(contracts.NewViewState(), RequiredFailed{Generation: 0, Message: "x"})
	assert.True(t, stale)
}

func TestReduce_PredictionIndependentOfPhase(t *testing.T) {
	s := reduce(t, contracts.NewViewState(), Selected{Company: apple})
	s = reduce(t, s, PredictionResolved{Generation: 1, Prediction: contracts.Available(*contractstest.Prediction("AAPL"))})

	assert.Equal(t, contracts.PhaseLoading, s.Phase)
	require.NotNil(t, s.Forecast)
	assert.Equal(t, contracts.TierHigh, s.Forecast.Tier)

	s = reduce(t, s, RequiredFailed{Generation: 1, Message: "boom"})
	assert.True(t, s.Prediction.IsAvailable(), "required failure leaves the prediction alone")
	assert.True(t, s.Settled())
}

func TestReduce_CatalogFailed(t *testing.T) {
	s := reduce(t, contracts.NewViewState(), CatalogFailed{Message: contracts.MsgNetworkError})

	assert.Equal(t, contracts.PhaseError, s.Phase)
	assert.Equal(t, contracts.MsgNetworkError, s.ErrorMessage)
	assert.Nil(t, s.Selected)
	assert.True(t, s.Settled())
}

func TestReduce_CatalogLoaded(t *testing.T) {
	failed := reduce(t, contracts.NewViewState(), CatalogFailed{Message: contracts.MsgNetworkError})

	s := reduce(t, failed, CatalogLoaded{})
	assert.Equal(t, contracts.PhaseIdle, s.Phase)
	assert.Empty(t, s.ErrorMessage)
	assert.Equal(t, contracts.PhaseError, failed.Phase)

	// a selection's own Error is not a catalog failure
	selected := reduce(t, contracts.NewViewState(), Selected{Company: apple})
	selected = reduce(t, selected, RequiredFailed{Generation: 1, Message: "Stock not found"})
	s = reduce(t, selected, CatalogLoaded{})
	assert.Equal(t, contracts.PhaseError, s.Phase)
	assert.Equal(t, "Stock not found", s.ErrorMessage)

	s = reduce(t, contracts.NewViewState(), CatalogLoaded{})
	assert.Equal(t, contracts.PhaseIdle, s.Phase)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := reduce(t, contracts.NewViewState(), Selected{Company: apple})
	history := contractstest.History(1, 2)

	next := reduce(t, s, RequiredResolved{Generation: 1, History: history, Quote: *contractstest.Quote("AAPL")})
	history[0].Close = 99

	assert.Equal(t, contracts.PhaseLoading, s.Phase)
	assert.Nil(t, s.History)
	assert.Equal(t, 1.0, next.History[0].Close)
}
