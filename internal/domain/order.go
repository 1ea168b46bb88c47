package domain

import (
	"fmt"
	"time"
)

// Side is the binary contract side being traded.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Action indicates whether this is a buy or sell.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Valid reports whether the action is one of the two known values.
func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// Outcome classifies the terminal state of an order submission.
type Outcome string

const (
	OutcomeFilled          Outcome = "filled"
	OutcomePartiallyFilled Outcome = "partially_filled"
	OutcomeRejected        Outcome = "rejected"
	OutcomeTimedOut        Outcome = "timed_out"
)

// OrderRequest describes a single operator-triggered order. The limit price
// is derived by the executor as an aggressive offset from the current best
// price; requests are constructed fresh per action and never auto-retried.
type OrderRequest struct {
	Ticker   string
	Side     Side
	Action   Action
	Quantity int
}

// Validate checks the request's own fields. The executor applies the
// session and liquidity guards separately.
func (r OrderRequest) Validate() error {
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d: %w", r.Quantity, ErrInvalidRequest)
	}
	if !r.Side.Valid() {
		return fmt.Errorf("unknown side %q: %w", r.Side, ErrInvalidRequest)
	}
	if !r.Action.Valid() {
		return fmt.Errorf("unknown action %q: %w", r.Action, ErrInvalidRequest)
	}
	return nil
}

// OrderResult is the immutable record of one order round trip. Latency is
// measured from request dispatch to response receipt, independent of any
// client-side queuing.
type OrderResult struct {
	Outcome        Outcome
	Ticker         string
	Side           Side
	Action         Action
	Quantity       int
	LimitPrice     int
	FilledQuantity int
	AvgFillPrice   int
	Latency        time.Duration
	OrderID        string
	ClientOrderID  string
	PlacedAt       time.Time
}
