// Package notify pushes operator alerts (fills, failures, degraded data)
// to external channels. Delivery is best effort and filtered by event type
// so the operator only gets the pings they asked for.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openoutcry/pitbot/internal/domain"
)

// Event types the operator can subscribe to.
const (
	EventOrderFilled   = "order_filled"
	EventOrderFailed   = "order_failed"
	EventSessionFailed = "session_failed"
	EventDegraded      = "degraded"
)

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier fans events out to all configured senders. Only events whose
// type is in the allowed set are delivered; an empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// TradeResult reports one order result to the operator.
func (n *Notifier) TradeResult(ctx context.Context, r domain.OrderResult) {
	event := EventOrderFilled
	if r.Outcome == domain.OutcomeRejected || r.Outcome == domain.OutcomeTimedOut {
		event = EventOrderFailed
	}

	title := fmt.Sprintf("%s %s %s",
		strings.ToUpper(string(r.Action)), strings.ToUpper(string(r.Side)), r.Ticker)
	msg := fmt.Sprintf("%s: %d/%d @ %d¢ limit, %dms",
		r.Outcome, r.FilledQuantity, r.Quantity, r.LimitPrice, r.Latency.Milliseconds())

	n.notify(ctx, event, title, msg)
}

// SessionFailed alerts the operator that the session needs manual
// re-authentication.
func (n *Notifier) SessionFailed(ctx context.Context) {
	n.notify(ctx, EventSessionFailed, "Session failed", "re-authentication required")
}

// notify filters by event type and dispatches to every sender. A failing
// sender never blocks the others; errors are logged, not returned, because
// alerting must not perturb the trade path.
func (n *Notifier) notify(ctx context.Context, event, title, message string) {
	if len(n.events) > 0 && !n.events[event] {
		return
	}

	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.Warn("sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
		}
	}
}
