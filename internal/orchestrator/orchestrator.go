package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/pkg/logger"
)

// Defaults used when Config leaves a field zero
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultHistoryDays  = 30
)

// Sink receives the outcome of each fetch group, tagged with its generation.
// Calls may arrive in any order and from any goroutine.
type Sink interface {
	OnRequiredDataResolved(generation uint64, history []contracts.PricePoint, quote contracts.Quote)
	OnRequiredDataFailed(generation uint64, err *contracts.RequiredDataError)
	OnPredictionResolved(generation uint64, prediction contracts.PredictionState)
}

// Config bounds the fetch plan
type Config struct {
	FetchTimeout time.Duration
	HistoryDays  int
}

// Orchestrator runs the fetch plan for one selection:
//   - required group: history and quote in parallel, all-or-nothing
//   - optional group: prediction, failures folded to Unavailable
//
// Superseded runs are never cancelled; the sink discards their results.
// ⭐ SSOT: the per-selection fetch plan lives here
type Orchestrator struct {
	gateway contracts.Gateway
	cfg     Config
	baseCtx context.Context
	logger  *logger.Logger
	wg      sync.WaitGroup
}

// New creates an orchestrator. Fetch contexts derive from ctx, so cancelling
// it aborts everything in flight (process shutdown).
func New(ctx context.Context, gw contracts.Gateway, cfg Config, log *logger.Logger) *Orchestrator {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = DefaultHistoryDays
	}
	return &Orchestrator{
		gateway: gw,
		cfg:     cfg,
		baseCtx: ctx,
		logger:  log.Component("orchestrator"),
	}
}

// Run starts both fetch groups for symbol and returns immediately
func (o *Orchestrator) Run(generation uint64, symbol string, sink Sink) {
	log := o.logger.WithFields(map[string]interface{}{
		"generation": generation,
		"symbol":     symbol,
	})
	log.Debug("Fetch plan started")

	o.wg.Add(2)
	go func() {
		defer o.wg.Done()
		o.runRequired(generation, symbol, sink, log)
	}()
	go func() {
		defer o.wg.Done()
		o.runOptional(generation, symbol, sink, log)
	}()
}

// Wait blocks until every started fetch group has reported to its sink
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) runRequired(generation uint64, symbol string, sink Sink, log *logger.Logger) {
	var (
		g       errgroup.Group
		history []contracts.PricePoint
		quote   *contracts.Quote
	)

	g.Go(func() error {
		ctx, cancel := o.fetchContext()
		defer cancel()

		h, err := bounded(ctx, contracts.OpGetHistory, func(ctx context.Context) ([]contracts.PricePoint, error) {
			return o.gateway.GetHistory(ctx, symbol, o.cfg.HistoryDays)
		})
		if err != nil {
			return contracts.AsGatewayError(contracts.OpGetHistory, err)
		}
		history = h
		return nil
	})

	g.Go(func() error {
		ctx, cancel := o.fetchContext()
		defer cancel()

		q, err := bounded(ctx, contracts.OpGetQuote, func(ctx context.Context) (*contracts.Quote, error) {
			return o.gateway.GetQuote(ctx, symbol)
		})
		if err != nil {
			return contracts.AsGatewayError(contracts.OpGetQuote, err)
		}
		if q == nil {
			return contracts.NewServerError(contracts.OpGetQuote, 0, "")
		}
		quote = q
		return nil
	})

	// errgroup keeps the first error returned, in completion order
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("Required data failed")
		sink.OnRequiredDataFailed(generation, &contracts.RequiredDataError{Symbol: symbol, Err: err})
		return
	}

	contracts.SortHistory(history)
	log.WithField("points", len(history)).Debug("Required data resolved")
	sink.OnRequiredDataResolved(generation, history, *quote)
}

func (o *Orchestrator) runOptional(generation uint64, symbol string, sink Sink, log *logger.Logger) {
	ctx, cancel := o.fetchContext()
	defer cancel()

	state := o.fetchPrediction(ctx, symbol)
	if state.Status == contracts.PredictionUnavailable {
		log.WithField("reason", state.Reason).Info("Prediction unavailable")
	}
	sink.OnPredictionResolved(generation, state)
}

// fetchPrediction never fails: every problem becomes Unavailable
func (o *Orchestrator) fetchPrediction(ctx context.Context, symbol string) contracts.PredictionState {
	p, err := bounded(ctx, contracts.OpGetPrediction, func(ctx context.Context) (*contracts.Prediction, error) {
		return o.gateway.GetPrediction(ctx, symbol)
	})
	if err != nil {
		return contracts.Unavailable(contracts.AsGatewayError(contracts.OpGetPrediction, err).Message)
	}
	if p == nil {
		return contracts.Unavailable(contracts.MsgModelUnavailable)
	}
	pred := *p
	if err := pred.Validate(); err != nil {
		return contracts.Unavailable(fmt.Sprintf("invalid forecast: %v", err))
	}
	if pred.Symbol == "" {
		pred.Symbol = symbol
	}
	return contracts.Available(pred)
}

func (o *Orchestrator) fetchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(o.baseCtx, o.cfg.FetchTimeout)
}

// bounded returns when fn does or when ctx expires, whichever comes first.
// fn keeps running to completion in the background after a timeout; its
// result is dropped.
func bounded[T any](ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, contracts.NewNetworkError(op, ctx.Err())
	}
}
