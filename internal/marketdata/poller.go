// Package marketdata keeps a continuously refreshed view of the active
// market's prices and orderbook depth. Polling runs on its own goroutine at
// a fixed cadence so a slow or failed poll never blocks the order path;
// consumers read the latest snapshot without locking.
package marketdata

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
	"github.com/openoutcry/pitbot/internal/platform/kalshi"
)

// TokenSource supplies the bearer token for outbound market-data calls.
type TokenSource interface {
	Token() (string, error)
}

// SnapshotSink receives every successful snapshot, e.g. to mirror it to
// Redis or push it to WebSocket clients. Sink errors are logged, never
// propagated into the poll loop.
type SnapshotSink interface {
	PublishSnapshot(ctx context.Context, snap domain.PriceSnapshot)
}

// Config holds the poller's tuning parameters.
type Config struct {
	// Interval between polls. Default 1 second.
	Interval time.Duration
	// DegradedAfter is the number of consecutive failed polls before the
	// connection-degraded flag is raised. Default 3.
	DegradedAfter int
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = time.Second
	}
	if c.DegradedAfter <= 0 {
		c.DegradedAfter = 3
	}
}

// Poller periodically fetches prices and orderbook depth for the single
// active market. The latest snapshot is replaced wholesale by an atomic
// pointer swap; readers see either the previous or the current snapshot,
// never a partial write.
type Poller struct {
	client *kalshi.Client
	tokens TokenSource
	sink   SnapshotSink // may be nil
	cfg    Config
	logger *slog.Logger

	ticker   atomic.Value // string, the active market ticker
	snap     atomic.Pointer[domain.PriceSnapshot]
	failures atomic.Int32 // consecutive poll failures
}

// NewPoller creates a Poller with no active market.
func NewPoller(client *kalshi.Client, tokens TokenSource, sink SnapshotSink, cfg Config, logger *slog.Logger) *Poller {
	cfg.applyDefaults()
	p := &Poller{
		client: client,
		tokens: tokens,
		sink:   sink,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "marketdata")),
	}
	p.ticker.Store("")
	return p
}

// SetMarket atomically replaces the active market and invalidates the
// previous snapshot. The switch takes effect before the next poll cycle.
func (p *Poller) SetMarket(ticker string) {
	p.ticker.Store(ticker)
	p.snap.Store(nil)
	p.failures.Store(0)
	p.logger.Info("active market set", slog.String("ticker", ticker))
}

// ActiveTicker returns the currently active market ticker, or "".
func (p *Poller) ActiveTicker() string {
	t, _ := p.ticker.Load().(string)
	return t
}

// Latest returns the most recent snapshot for the active market. The second
// return is false until at least one poll has succeeded since the market
// was last set.
func (p *Poller) Latest() (domain.PriceSnapshot, bool) {
	s := p.snap.Load()
	if s == nil {
		return domain.PriceSnapshot{}, false
	}
	return *s, true
}

// Degraded reports whether recent polls have failed consecutively enough to
// warrant a connection-degraded signal at the boundary.
func (p *Poller) Degraded() bool {
	return p.failures.Load() >= int32(p.cfg.DegradedAfter)
}

// Run drives the poll loop until the context is cancelled. A failed poll
// leaves the previous snapshot in place and polling resumes on the next
// tick without intervention; only the failure counter is advanced.
func (p *Poller) Run(ctx context.Context) error {
	tick := time.NewTicker(p.cfg.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			p.poll(ctx)
		}
	}
}

// poll performs one fetch cycle for the active market.
func (p *Poller) poll(ctx context.Context) {
	ticker := p.ActiveTicker()
	if ticker == "" {
		return
	}

	token, err := p.tokens.Token()
	if err != nil {
		p.recordFailure(ticker, err)
		return
	}

	market, err := p.client.GetMarket(ctx, token, ticker)
	if err != nil {
		p.recordFailure(ticker, err)
		return
	}

	book, err := p.client.GetOrderbook(ctx, token, ticker)
	if err != nil {
		p.recordFailure(ticker, err)
		return
	}

	snap := domain.PriceSnapshot{
		Ticker:     ticker,
		YesBid:     market.YesBid,
		YesAsk:     market.YesAsk,
		NoBid:      market.NoBid,
		NoAsk:      market.NoAsk,
		YesDepth:   kalshi.Depth(book.YesBids),
		NoDepth:    kalshi.Depth(book.NoBids),
		CapturedAt: time.Now(),
	}

	// The operator may have switched markets while this fetch was in
	// flight; a stale snapshot must not clobber the new market's state.
	if p.ActiveTicker() != ticker {
		return
	}

	p.snap.Store(&snap)
	p.failures.Store(0)

	if p.sink != nil {
		p.sink.PublishSnapshot(ctx, snap)
	}
}

func (p *Poller) recordFailure(ticker string, err error) {
	n := p.failures.Add(1)
	p.logger.Warn("poll failed",
		slog.String("ticker", ticker),
		slog.Int("consecutive", int(n)),
		slog.String("error", err.Error()),
	)
}
