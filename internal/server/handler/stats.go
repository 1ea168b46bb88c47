package handler

import (
	"net/http"

	"github.com/openoutcry/pitbot/internal/domain"
)

// StatsService defines the methods the stats handler requires from the
// trading layer.
type StatsService interface {
	Stats() domain.SessionStats
	ResetStats()
}

// StatsHandler serves session statistics endpoints.
type StatsHandler struct {
	svc StatsService
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// recentTrade is one entry in the recent-trades ring.
type recentTrade struct {
	Outcome        domain.Outcome `json:"outcome"`
	Ticker         string         `json:"ticker"`
	Side           domain.Side    `json:"side"`
	Action         domain.Action  `json:"action"`
	Quantity       int            `json:"quantity"`
	FilledQuantity int            `json:"filled_quantity"`
	LimitPrice     int            `json:"limit_price"`
	LatencyMS      int64          `json:"latency_ms"`
}

// statsResponse is the aggregate view over all orders this session.
type statsResponse struct {
	TradeCount      int           `json:"trade_count"`
	Filled          int           `json:"filled"`
	PartiallyFilled int           `json:"partially_filled"`
	Rejected        int           `json:"rejected"`
	TimedOut        int           `json:"timed_out"`
	MinLatencyMS    int64         `json:"min_latency_ms"`
	MaxLatencyMS    int64         `json:"max_latency_ms"`
	AvgLatencyMS    float64       `json:"avg_latency_ms"`
	Recent          []recentTrade `json:"recent"`
}

// Stats returns the aggregated session statistics.
// GET /api/stats
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Stats()

	recent := make([]recentTrade, 0, len(s.Recent))
	for _, t := range s.Recent {
		recent = append(recent, recentTrade{
			Outcome:        t.Outcome,
			Ticker:         t.Ticker,
			Side:           t.Side,
			Action:         t.Action,
			Quantity:       t.Quantity,
			FilledQuantity: t.FilledQuantity,
			LimitPrice:     t.LimitPrice,
			LatencyMS:      t.Latency.Milliseconds(),
		})
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TradeCount:      s.TradeCount,
		Filled:          s.Filled,
		PartiallyFilled: s.PartiallyFilled,
		Rejected:        s.Rejected,
		TimedOut:        s.TimedOut,
		MinLatencyMS:    s.MinLatency.Milliseconds(),
		MaxLatencyMS:    s.MaxLatency.Milliseconds(),
		AvgLatencyMS:    float64(s.AvgLatency()) / 1e6,
		Recent:          recent,
	})
}

// ResetStats clears the aggregates, e.g. between games.
// DELETE /api/stats
func (h *StatsHandler) ResetStats(w http.ResponseWriter, r *http.Request) {
	h.svc.ResetStats()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
