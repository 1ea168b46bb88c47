package domain

import "time"

// Price bounds for binary market contracts, in cents.
const (
	MinPriceCents = 1
	MaxPriceCents = 99
)

// PriceSnapshot is a point-in-time view of the active market: best bid/ask
// on both sides in cents plus total resting depth per side. Snapshots are
// immutable once produced; the poller replaces the whole value atomically
// each tick.
type PriceSnapshot struct {
	Ticker     string
	YesBid     int
	YesAsk     int
	NoBid      int
	NoAsk      int
	YesDepth   int64
	NoDepth    int64
	CapturedAt time.Time
}

// DepthFor returns the resting contract depth on the given side.
func (s PriceSnapshot) DepthFor(side Side) int64 {
	if side == SideYes {
		return s.YesDepth
	}
	return s.NoDepth
}

// BestAsk returns the best ask in cents for the given side.
func (s PriceSnapshot) BestAsk(side Side) int {
	if side == SideYes {
		return s.YesAsk
	}
	return s.NoAsk
}

// BestBid returns the best bid in cents for the given side.
func (s PriceSnapshot) BestBid(side Side) int {
	if side == SideYes {
		return s.YesBid
	}
	return s.NoBid
}

// ClampPrice bounds a price to the valid contract range.
func ClampPrice(cents int) int {
	if cents < MinPriceCents {
		return MinPriceCents
	}
	if cents > MaxPriceCents {
		return MaxPriceCents
	}
	return cents
}
