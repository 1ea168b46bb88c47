package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
	"github.com/openoutcry/pitbot/internal/notify"
)

// eventPublisher fans component events out to the signal bus, the optional
// Redis snapshot mirror, and the operator notifier. It sits off the hot
// path: every publish is best effort and failures are only logged.
type eventPublisher struct {
	bus      domain.SignalBus
	mirror   domain.PriceCache // nil when Redis is disabled
	notifier *notify.Notifier
	logger   *slog.Logger
}

func newEventPublisher(bus domain.SignalBus, mirror domain.PriceCache, notifier *notify.Notifier, logger *slog.Logger) *eventPublisher {
	return &eventPublisher{
		bus:      bus,
		mirror:   mirror,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "events")),
	}
}

// PublishSnapshot mirrors the snapshot to Redis and pushes it onto the bus.
func (p *eventPublisher) PublishSnapshot(ctx context.Context, snap domain.PriceSnapshot) {
	if p.mirror != nil {
		if err := p.mirror.SetSnapshot(ctx, snap); err != nil {
			p.logger.Warn("snapshot mirror failed", slog.String("error", err.Error()))
		}
	}
	p.publish(ctx, domain.ChannelSnapshots, snap)
}

// PublishTrade pushes the order result onto the bus and alerts the operator.
func (p *eventPublisher) PublishTrade(ctx context.Context, r domain.OrderResult) {
	p.publish(ctx, domain.ChannelTrades, r)
	p.notifier.TradeResult(ctx, r)
}

// SessionTransition pushes session status changes onto the bus and alerts
// the operator when the session fails.
func (p *eventPublisher) SessionTransition(s domain.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p.publish(ctx, domain.ChannelSession, map[string]any{
		"status":     s.Status,
		"member_id":  s.MemberID,
		"expires_at": s.ExpiresAt,
	})

	if s.Status == domain.SessionFailed {
		p.notifier.SessionFailed(ctx)
	}
}

func (p *eventPublisher) publish(ctx context.Context, channel string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := p.bus.Publish(ctx, channel, payload); err != nil {
		p.logger.Warn("bus publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}
