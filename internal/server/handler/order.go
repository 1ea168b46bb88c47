package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/openoutcry/pitbot/internal/domain"
)

// OrderService defines the methods the order handler requires from the
// trading layer.
type OrderService interface {
	Execute(ctx context.Context, side domain.Side, action domain.Action, quantity int) (domain.OrderResult, error)
}

// OrderHandler serves the one-click trade endpoint.
type OrderHandler struct {
	svc    OrderService
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(svc OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logHandler(logger, "order")}
}

// tradeRequest is the operator's order intent: side, action, quantity. The
// limit price is never client-supplied; the executor derives it from the
// live snapshot.
type tradeRequest struct {
	Side     domain.Side   `json:"side"`
	Action   domain.Action `json:"action"`
	Quantity int           `json:"quantity"`
}

// tradeResponse reports the order outcome including the measured venue
// round-trip latency.
type tradeResponse struct {
	Outcome        domain.Outcome `json:"outcome"`
	Ticker         string         `json:"ticker"`
	Side           domain.Side    `json:"side"`
	Action         domain.Action  `json:"action"`
	Quantity       int            `json:"quantity"`
	LimitPrice     int            `json:"limit_price"`
	FilledQuantity int            `json:"filled_quantity"`
	AvgFillPrice   int            `json:"avg_fill_price,omitempty"`
	LatencyMS      int64          `json:"latency_ms"`
	OrderID        string         `json:"order_id,omitempty"`
}

// Trade submits one aggressive limit order against the active market.
// POST /api/trade
func (h *OrderHandler) Trade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Execute(r.Context(), req.Side, req.Action, req.Quantity)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "trade failed",
			slog.String("side", string(req.Side)),
			slog.String("action", string(req.Action)),
			slog.Int("quantity", req.Quantity),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tradeResponse{
		Outcome:        result.Outcome,
		Ticker:         result.Ticker,
		Side:           result.Side,
		Action:         result.Action,
		Quantity:       result.Quantity,
		LimitPrice:     result.LimitPrice,
		FilledQuantity: result.FilledQuantity,
		AvgFillPrice:   result.AvgFillPrice,
		LatencyMS:      result.Latency.Milliseconds(),
		OrderID:        result.OrderID,
	})
}
