// Package executor submits operator-triggered orders against the active
// session, measuring round-trip latency and classifying every outcome. The
// strategy's profit depends on speed rather than price precision, so orders
// are aggressive limit orders biased toward immediate fill.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openoutcry/pitbot/internal/domain"
	"github.com/openoutcry/pitbot/internal/platform/kalshi"
)

// TokenSource supplies the bearer token for order dispatch.
type TokenSource interface {
	Token() (string, error)
}

// SnapshotSource exposes the poller's view of the active market.
type SnapshotSource interface {
	ActiveTicker() string
	Latest() (domain.PriceSnapshot, bool)
}

// Recorder receives every order result exactly once, whatever its outcome.
type Recorder interface {
	Record(domain.OrderResult)
}

// ResultSink optionally observes dispatched results, e.g. to notify the
// operator or push them to WebSocket clients.
type ResultSink interface {
	PublishTrade(ctx context.Context, r domain.OrderResult)
}

// Config holds the executor's trading parameters.
type Config struct {
	// MinDepth is the minimum resting contracts on the traded side before
	// dispatch; below it the order fails fast without touching the
	// network. Default 500.
	MinDepth int64
	// BuyOffsetCents is added above the best ask on buys. Default 3.
	BuyOffsetCents int
	// SellOffsetCents is subtracted below the best bid on sells. Default 2.
	SellOffsetCents int
	// OrderTimeout bounds the order round trip. Default 3s.
	OrderTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.MinDepth <= 0 {
		c.MinDepth = 500
	}
	if c.BuyOffsetCents <= 0 {
		c.BuyOffsetCents = 3
	}
	if c.SellOffsetCents <= 0 {
		c.SellOffsetCents = 2
	}
	if c.OrderTimeout <= 0 {
		c.OrderTimeout = 3 * time.Second
	}
}

// Executor validates, prices, and dispatches orders. Concurrent Execute
// calls are independent; shared state is read through atomic snapshots
// only, so simultaneous orders cannot corrupt anything.
type Executor struct {
	client  *kalshi.Client
	tokens  TokenSource
	books   SnapshotSource
	results Recorder
	sink    ResultSink // may be nil
	cfg     Config
	logger  *slog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(client *kalshi.Client, tokens TokenSource, books SnapshotSource, results Recorder, sink ResultSink, cfg Config, logger *slog.Logger) *Executor {
	cfg.applyDefaults()
	return &Executor{
		client:  client,
		tokens:  tokens,
		books:   books,
		results: results,
		sink:    sink,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "executor")),
	}
}

// Execute runs the guard chain and, if it passes, dispatches an aggressive
// limit order. Guard failures return before any network traffic and record
// nothing; every dispatched order yields exactly one recorded OrderResult.
// No outcome is ever retried automatically: resubmission is the operator's
// call, because duplicate submission risks double execution.
func (e *Executor) Execute(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	if err := req.Validate(); err != nil {
		return domain.OrderResult{}, err
	}

	ticker := req.Ticker
	if ticker == "" {
		ticker = e.books.ActiveTicker()
	}
	if ticker == "" {
		return domain.OrderResult{}, domain.ErrNoMarket
	}

	token, err := e.tokens.Token()
	if err != nil {
		return domain.OrderResult{}, err
	}

	snap, ok := e.books.Latest()
	if !ok || snap.Ticker != ticker {
		return domain.OrderResult{}, domain.ErrSnapshotUnavailable
	}

	// Liquidity guard: an illiquid book invites slippage, so fail fast
	// before the wire.
	if depth := snap.DepthFor(req.Side); depth < e.cfg.MinDepth {
		return domain.OrderResult{}, fmt.Errorf("depth %d below minimum %d: %w",
			depth, e.cfg.MinDepth, domain.ErrInsufficientLiquidity)
	}

	limit := e.limitPrice(req, snap)
	clientID := uuid.NewString()

	order := kalshi.CreateOrderRequest{
		Ticker:        ticker,
		ClientOrderID: clientID,
		Side:          string(req.Side),
		Action:        string(req.Action),
		Count:         req.Quantity,
		Type:          "limit",
	}
	if req.Side == domain.SideYes {
		order.YesPrice = limit
	} else {
		order.NoPrice = limit
	}

	result := domain.OrderResult{
		Ticker:        ticker,
		Side:          req.Side,
		Action:        req.Action,
		Quantity:      req.Quantity,
		LimitPrice:    limit,
		ClientOrderID: clientID,
		PlacedAt:      time.Now(),
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.OrderTimeout)
	defer cancel()

	// The latency clock brackets only the network round trip; client-side
	// queuing before this point does not count.
	start := time.Now()
	resp, err := e.client.CreateOrder(callCtx, token, order)
	result.Latency = time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTimedOut):
			result.Outcome = domain.OutcomeTimedOut
		case errors.Is(err, domain.ErrServerRejected),
			errors.Is(err, domain.ErrAuthenticationFailed),
			errors.Is(err, domain.ErrRateLimited),
			errors.Is(err, domain.ErrNotFound):
			result.Outcome = domain.OutcomeRejected
		default:
			// Transport failure with no venue response: the order's fate
			// is unknown, so no result is fabricated. The operator decides
			// whether to resubmit.
			e.logger.Error("order dispatch failed",
				slog.String("ticker", ticker),
				slog.Duration("latency", result.Latency),
				slog.String("error", err.Error()),
			)
			return domain.OrderResult{}, err
		}
		e.finish(ctx, result)
		return result, nil
	}

	result.OrderID = resp.Order.OrderID
	result.FilledQuantity = resp.Order.TakerFillCount
	if resp.Order.TakerFillCount > 0 {
		result.AvgFillPrice = int(resp.Order.TakerFillCost / int64(resp.Order.TakerFillCount))
	}

	switch {
	case resp.Order.Status == "canceled":
		result.Outcome = domain.OutcomeRejected
	case resp.Order.TakerFillCount >= req.Quantity:
		result.Outcome = domain.OutcomeFilled
	default:
		result.Outcome = domain.OutcomePartiallyFilled
	}

	e.finish(ctx, result)
	return result, nil
}

// limitPrice derives the aggressive limit: buys cross the best ask plus an
// offset, sells undercut the best bid by an offset, both clamped to 1-99.
func (e *Executor) limitPrice(req domain.OrderRequest, snap domain.PriceSnapshot) int {
	if req.Action == domain.ActionBuy {
		return domain.ClampPrice(snap.BestAsk(req.Side) + e.cfg.BuyOffsetCents)
	}
	return domain.ClampPrice(snap.BestBid(req.Side) - e.cfg.SellOffsetCents)
}

// finish records the result exactly once and fans it out to observers.
func (e *Executor) finish(ctx context.Context, r domain.OrderResult) {
	e.results.Record(r)

	e.logger.Info("order result",
		slog.String("ticker", r.Ticker),
		slog.String("side", string(r.Side)),
		slog.String("action", string(r.Action)),
		slog.String("outcome", string(r.Outcome)),
		slog.Int("quantity", r.Quantity),
		slog.Int("filled", r.FilledQuantity),
		slog.Int("limit_price", r.LimitPrice),
		slog.Duration("latency", r.Latency),
	)

	if e.sink != nil {
		e.sink.PublishTrade(ctx, r)
	}
}
