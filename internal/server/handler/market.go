package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
	"github.com/openoutcry/pitbot/internal/platform/kalshi"
)

// MarketService defines the methods the market handler requires from the
// trading layer.
type MarketService interface {
	SetMarket(ctx context.Context, ticker string) (kalshi.Market, error)
	Snapshot() (domain.PriceSnapshot, bool, bool)
}

// MarketHandler serves market selection and price snapshot endpoints.
type MarketHandler struct {
	svc    MarketService
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(svc MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{svc: svc, logger: logHandler(logger, "market")}
}

// setTickerRequest selects the active market.
type setTickerRequest struct {
	Ticker string `json:"ticker"`
}

// setTickerResponse confirms the switch with venue metadata.
type setTickerResponse struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// orderbookResponse is the operator view of the latest snapshot.
type orderbookResponse struct {
	Ticker     string    `json:"ticker"`
	YesBid     int       `json:"yes_bid"`
	YesAsk     int       `json:"yes_ask"`
	NoBid      int       `json:"no_bid"`
	NoAsk      int       `json:"no_ask"`
	YesDepth   int64     `json:"yes_depth"`
	NoDepth    int64     `json:"no_depth"`
	CapturedAt time.Time `json:"captured_at"`
	AgeMS      int64     `json:"age_ms"`
	Degraded   bool      `json:"degraded"`
}

// SetTicker validates the ticker against the venue and makes it the active
// market.
// POST /api/ticker
func (h *MarketHandler) SetTicker(w http.ResponseWriter, r *http.Request) {
	var req setTickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	market, err := h.svc.SetMarket(r.Context(), req.Ticker)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "set ticker failed",
			slog.String("ticker", req.Ticker),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, setTickerResponse{
		Ticker: market.Ticker,
		Title:  market.Title,
		Status: market.Status,
	})
}

// Orderbook returns the latest polled snapshot for the active market.
// GET /api/orderbook
func (h *MarketHandler) Orderbook(w http.ResponseWriter, r *http.Request) {
	snap, ok, degraded := h.svc.Snapshot()
	if !ok {
		writeDomainError(w, domain.ErrSnapshotUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, orderbookResponse{
		Ticker:     snap.Ticker,
		YesBid:     snap.YesBid,
		YesAsk:     snap.YesAsk,
		NoBid:      snap.NoBid,
		NoAsk:      snap.NoAsk,
		YesDepth:   snap.YesDepth,
		NoDepth:    snap.NoDepth,
		CapturedAt: snap.CapturedAt.UTC(),
		AgeMS:      time.Since(snap.CapturedAt).Milliseconds(),
		Degraded:   degraded,
	})
}
