package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/internal/orchestrator"
	"github.com/vv031/Stock-Market/pkg/logger"
)

var (
	ErrCatalogNotLoaded = errors.New("company catalog not loaded")
	ErrUnknownCompany   = errors.New("company not in catalog")
	ErrEmptyCatalog     = errors.New("company catalog is empty")
)

// Runner starts the fetch plan of one generation without blocking
type Runner interface {
	Run(generation uint64, symbol string, sink orchestrator.Sink)
}

// Controller owns the current selection and its ViewState. Every transition
// goes through Reduce under one lock, so writes are linearized; results of a
// superseded generation are dropped there.
// ⭐ SSOT: the only writer of ViewState
type Controller struct {
	gateway contracts.Gateway
	runner  Runner
	logger  *logger.Logger

	loadMu sync.Mutex // serializes catalog loads

	mu       sync.Mutex
	state    contracts.ViewState
	catalog  []contracts.Company
	bySymbol map[string]contracts.Company
	subs     map[int]chan contracts.ViewState
	nextSub  int
}

var _ orchestrator.Sink = (*Controller)(nil)

// New creates a controller in the Idle phase
func New(gw contracts.Gateway, runner Runner, log *logger.Logger) *Controller {
	return &Controller{
		gateway: gw,
		runner:  runner,
		logger:  log.Component("selection"),
		state:   contracts.NewViewState(),
		subs:    make(map[int]chan contracts.ViewState),
	}
}

// LoadCatalog fetches the company catalog. Once loaded it is read-only and
// later calls return it without fetching again.
func (c *Controller) LoadCatalog(ctx context.Context) ([]contracts.Company, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if catalog := c.Catalog(); catalog != nil {
		return catalog, nil
	}

	companies, err := c.gateway.ListCompanies(ctx)
	if err != nil {
		loadErr := &contracts.CatalogLoadError{Err: contracts.AsGatewayError(contracts.OpListCompanies, err)}
		c.logger.WithError(err).Error("Failed to load companies")

		c.mu.Lock()
		c.apply(CatalogFailed{Message: loadErr.Err.Error()})
		c.mu.Unlock()
		return nil, loadErr
	}

	bySymbol := make(map[string]contracts.Company, len(companies))
	for _, company := range companies {
		bySymbol[company.Symbol] = company
	}

	c.mu.Lock()
	c.catalog = append([]contracts.Company{}, companies...)
	c.bySymbol = bySymbol
	c.apply(CatalogLoaded{})
	c.mu.Unlock()

	c.logger.WithField("count", len(companies)).Info("Company catalog loaded")
	return c.Catalog(), nil
}

// Catalog returns a copy of the loaded catalog, nil before LoadCatalog succeeds
func (c *Controller) Catalog() []contracts.Company {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog == nil {
		return nil
	}
	return append([]contracts.Company{}, c.catalog...)
}

// SelectCompany starts a new generation for symbol and kicks off its fetch
// plan. Re-selecting the current company also starts a fresh generation.
func (c *Controller) SelectCompany(symbol string) error {
	c.mu.Lock()
	if c.catalog == nil {
		c.mu.Unlock()
		return ErrCatalogNotLoaded
	}
	company, ok := c.bySymbol[symbol]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownCompany, symbol)
	}
	c.apply(Selected{Company: company})
	generation := c.state.Generation
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"generation": generation,
	}).Info("Company selected")

	c.runner.Run(generation, symbol, c)
	return nil
}

// SelectFirst selects the first company of the catalog
func (c *Controller) SelectFirst() error {
	catalog := c.Catalog()
	if catalog == nil {
		return ErrCatalogNotLoaded
	}
	if len(catalog) == 0 {
		return ErrEmptyCatalog
	}
	return c.SelectCompany(catalog[0].Symbol)
}

// State returns a snapshot of the current ViewState
func (c *Controller) State() contracts.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe returns a feed of ViewState snapshots, starting with the current
// one. The feed keeps only the latest undelivered snapshot, so a slow reader
// skips intermediate states but always sees the newest. Call the returned
// function to unsubscribe.
func (c *Controller) Subscribe() (<-chan contracts.ViewState, func()) {
	ch := make(chan contracts.ViewState, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state.Clone()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// OnRequiredDataResolved applies the joined history and quote of generation
func (c *Controller) OnRequiredDataResolved(generation uint64, history []contracts.PricePoint, quote contracts.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(RequiredResolved{Generation: generation, History: history, Quote: quote})
}

// OnRequiredDataFailed moves generation to the Error phase
func (c *Controller) OnRequiredDataFailed(generation uint64, err *contracts.RequiredDataError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(RequiredFailed{Generation: generation, Message: err.Error()})
}

// OnPredictionResolved sets the prediction of generation, whatever the phase
func (c *Controller) OnPredictionResolved(generation uint64, prediction contracts.PredictionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(PredictionResolved{Generation: generation, Prediction: prediction})
}

// apply runs the reducer and publishes the result. Caller holds c.mu.
func (c *Controller) apply(ev Event) {
	next, stale := Reduce(c.state, ev)
	if stale {
		c.logger.WithFields(map[string]interface{}{
			"event":      fmt.Sprintf("%T", ev),
			"current":    c.state.Generation,
			"event_from": eventGeneration(ev),
		}).Debug("Discarded stale result")
		return
	}

	c.state = next
	for _, ch := range c.subs {
		offer(ch, next.Clone())
	}
}

// offer replaces any undelivered snapshot in ch with s. Only apply sends on
// ch, under c.mu, so the second send cannot block.
func offer(ch chan contracts.ViewState, s contracts.ViewState) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}

func eventGeneration(ev Event) uint64 {
	switch e := ev.(type) {
	case RequiredResolved:
		return e.Generation
	case RequiredFailed:
		return e.Generation
	case PredictionResolved:
		return e.Generation
	default:
		return 0
	}
}
