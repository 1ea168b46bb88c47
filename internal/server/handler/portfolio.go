package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/openoutcry/pitbot/internal/platform/kalshi"
)

// PortfolioService defines the methods the portfolio handler requires from
// the trading layer.
type PortfolioService interface {
	Balance(ctx context.Context) (int64, error)
	Positions(ctx context.Context) ([]kalshi.Position, error)
}

// PortfolioHandler serves account balance and position endpoints.
type PortfolioHandler struct {
	svc    PortfolioService
	logger *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(svc PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{svc: svc, logger: logHandler(logger, "portfolio")}
}

// balanceResponse reports the account balance in cents.
type balanceResponse struct {
	BalanceCents int64 `json:"balance_cents"`
}

// positionsResponse wraps the positions list.
type positionsResponse struct {
	Positions []kalshi.Position `json:"positions"`
}

// Balance returns the account balance.
// GET /api/balance
func (h *PortfolioHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.Balance(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "balance fetch failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{BalanceCents: balance})
}

// Positions returns open positions, filtered to the active market when one
// is set.
// GET /api/positions
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.svc.Positions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "positions fetch failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	if positions == nil {
		positions = []kalshi.Position{}
	}
	writeJSON(w, http.StatusOK, positionsResponse{Positions: positions})
}
