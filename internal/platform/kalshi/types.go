package kalshi

import "time"

// --------------------------------------------------------------------------
// Kalshi API DTOs
// --------------------------------------------------------------------------

// loginRequest is the payload for POST /login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token returned by POST /login. The venue
// may also report when the token expires; when it does, that horizon is
// authoritative for refresh scheduling.
type LoginResponse struct {
	Token     string `json:"token"`
	MemberID  string `json:"member_id"`
	ExpiresTS int64  `json:"expires_ts,omitempty"` // Unix seconds, optional
}

// Market represents a market as returned by GET /markets/{ticker}.
// Prices are in cents (1-99).
type Market struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	Title        string `json:"title"`
	Status       string `json:"status"` // "open", "closed", "settled"
	YesBid       int    `json:"yes_bid"`
	YesAsk       int    `json:"yes_ask"`
	NoBid        int    `json:"no_bid"`
	NoAsk        int    `json:"no_ask"`
	LastPrice    int    `json:"last_price"`
	Volume       int64  `json:"volume"`
	OpenInterest int64  `json:"open_interest"`
	CloseTime    string `json:"close_time"`
}

// Orderbook is the resting liquidity for a market: the "yes" and "no"
// arrays each hold the bids on that side.
type Orderbook struct {
	Ticker    string       `json:"ticker"`
	YesBids   []PriceLevel `json:"yes"`
	NoBids    []PriceLevel `json:"no"`
	Timestamp time.Time    `json:"-"`
}

// PriceLevel is a single price+quantity entry in the orderbook.
type PriceLevel struct {
	Price    int   `json:"price"`    // cents (1-99)
	Quantity int64 `json:"quantity"` // contracts
}

// Depth returns the total resting contracts across the given levels.
func Depth(levels []PriceLevel) int64 {
	var total int64
	for _, l := range levels {
		total += l.Quantity
	}
	return total
}

// CreateOrderRequest is the payload for POST /portfolio/orders.
// Exactly one of YesPrice/NoPrice is set, matching the order's side.
type CreateOrderRequest struct {
	Ticker        string `json:"ticker"`
	ClientOrderID string `json:"client_order_id"`
	Side          string `json:"side"`   // "yes" or "no"
	Action        string `json:"action"` // "buy" or "sell"
	Count         int    `json:"count"`
	Type          string `json:"type"` // "limit"
	YesPrice      int    `json:"yes_price,omitempty"`
	NoPrice       int    `json:"no_price,omitempty"`
}

// OrderResponse is the venue's view of a submitted order.
type OrderResponse struct {
	Order struct {
		OrderID        string `json:"order_id"`
		Ticker         string `json:"ticker"`
		Status         string `json:"status"` // "resting", "canceled", "executed", "pending"
		Side           string `json:"side"`
		Action         string `json:"action"`
		YesPrice       int    `json:"yes_price"`
		NoPrice        int    `json:"no_price"`
		RemainingCount int    `json:"remaining_count"`
		TakerFillCount int    `json:"taker_fill_count"`
		TakerFillCost  int64  `json:"taker_fill_cost"` // cents, total
	} `json:"order"`
}

// BalanceResponse is the account balance in cents.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// Position is one open position as returned by GET /portfolio/positions.
type Position struct {
	Ticker         string `json:"ticker"`
	Position       int    `json:"position"` // signed contracts, + yes / - no
	MarketExposure int64  `json:"market_exposure"`
	RealizedPnl    int64  `json:"realized_pnl"`
	RestingOrders  int    `json:"resting_orders_count"`
}

// ErrorResponse is the venue's error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
