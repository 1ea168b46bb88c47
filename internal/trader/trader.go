// Package trader composes the session manager, market data poller, order
// executor, and stats aggregator behind the operations the HTTP boundary
// calls. Cross-component invariants (no order without authentication, no
// order without liquidity) are enforced here and in the executor, never
// left to the caller.
package trader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openoutcry/pitbot/internal/domain"
	"github.com/openoutcry/pitbot/internal/executor"
	"github.com/openoutcry/pitbot/internal/marketdata"
	"github.com/openoutcry/pitbot/internal/platform/kalshi"
	"github.com/openoutcry/pitbot/internal/session"
	"github.com/openoutcry/pitbot/internal/stats"
)

// Trader is the single object the boundary talks to.
type Trader struct {
	sessions *session.Manager
	poller   *marketdata.Poller
	orders   *executor.Executor
	stats    *stats.Aggregator
	client   *kalshi.Client
	logger   *slog.Logger
}

// New creates a Trader over already-constructed components.
func New(
	sessions *session.Manager,
	poller *marketdata.Poller,
	orders *executor.Executor,
	agg *stats.Aggregator,
	client *kalshi.Client,
	logger *slog.Logger,
) *Trader {
	return &Trader{
		sessions: sessions,
		poller:   poller,
		orders:   orders,
		stats:    agg,
		client:   client,
		logger:   logger.With(slog.String("component", "trader")),
	}
}

// Authenticate logs in with the given credentials and returns the
// resulting session snapshot.
func (t *Trader) Authenticate(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	return t.sessions.Authenticate(ctx, creds)
}

// ResetSession discards the current token and re-authenticates with the
// stored credentials.
func (t *Trader) ResetSession(ctx context.Context) (domain.Session, error) {
	return t.sessions.ResetSession(ctx)
}

// Session returns the current session snapshot.
func (t *Trader) Session() domain.Session {
	return t.sessions.Current()
}

// SetMarket validates the ticker against the venue and makes it the active
// market. The previous market's snapshot is invalidated immediately; the
// next snapshot read reports unavailable until a poll on the new market
// succeeds.
func (t *Trader) SetMarket(ctx context.Context, ticker string) (kalshi.Market, error) {
	if ticker == "" {
		return kalshi.Market{}, fmt.Errorf("empty ticker: %w", domain.ErrInvalidRequest)
	}

	token, err := t.sessions.Token()
	if err != nil {
		return kalshi.Market{}, err
	}

	market, err := t.client.GetMarket(ctx, token, ticker)
	if err != nil {
		return kalshi.Market{}, err
	}

	t.poller.SetMarket(ticker)
	return market, nil
}

// Snapshot returns the latest price snapshot, whether one is available,
// and the connection-degraded flag.
func (t *Trader) Snapshot() (domain.PriceSnapshot, bool, bool) {
	snap, ok := t.poller.Latest()
	return snap, ok, t.poller.Degraded()
}

// Execute submits one operator-triggered order against the active market.
func (t *Trader) Execute(ctx context.Context, side domain.Side, action domain.Action, quantity int) (domain.OrderResult, error) {
	return t.orders.Execute(ctx, domain.OrderRequest{
		Side:     side,
		Action:   action,
		Quantity: quantity,
	})
}

// Stats returns a consistent copy of the session statistics.
func (t *Trader) Stats() domain.SessionStats {
	return t.stats.Snapshot()
}

// ResetStats clears the session statistics, e.g. between games.
func (t *Trader) ResetStats() {
	t.stats.Reset()
	t.logger.Info("session stats reset")
}

// Balance returns the account balance in cents.
func (t *Trader) Balance(ctx context.Context) (int64, error) {
	token, err := t.sessions.Token()
	if err != nil {
		return 0, err
	}

	resp, err := t.client.GetBalance(ctx, token)
	if err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Positions returns open positions, filtered to the active market when one
// is set.
func (t *Trader) Positions(ctx context.Context) ([]kalshi.Position, error) {
	token, err := t.sessions.Token()
	if err != nil {
		return nil, err
	}

	all, err := t.client.GetPositions(ctx, token)
	if err != nil {
		return nil, err
	}

	active := t.poller.ActiveTicker()
	if active == "" {
		return all, nil
	}

	filtered := make([]kalshi.Position, 0, len(all))
	for _, p := range all {
		if p.Ticker == active {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
