package trader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
	"github.com/openoutcry/pitbot/internal/executor"
	"github.com/openoutcry/pitbot/internal/marketdata"
	"github.com/openoutcry/pitbot/internal/platform/kalshi"
	"github.com/openoutcry/pitbot/internal/session"
	"github.com/openoutcry/pitbot/internal/stats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeVenue is a complete enough exchange for the operator workflow: login,
// market lookup, orderbook, order placement, balance, and positions.
func fakeVenue(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"invalid_credentials","message":"bad login"}`))
			return
		}
		json.NewEncoder(w).Encode(kalshi.LoginResponse{Token: "tok-1", MemberID: "m-1"})
	})
	mux.HandleFunc("GET /markets/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		ticker := r.PathValue("ticker")
		if ticker == "NO-SUCH" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":"not_found","message":"unknown market"}`))
			return
		}
		fmt.Fprintf(w, `{"market":{"ticker":%q,"title":"Test game","status":"open","yes_bid":50,"yes_ask":52,"no_bid":48,"no_ask":50}}`, ticker)
	})
	mux.HandleFunc("GET /markets/{ticker}/orderbook", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orderbook":{"yes":[{"price":50,"quantity":1200}],"no":[{"price":48,"quantity":900}]}}`))
	})
	mux.HandleFunc("POST /portfolio/orders", func(w http.ResponseWriter, r *http.Request) {
		var req kalshi.CreateOrderRequest
		json.NewDecoder(r.Body).Decode(&req)
		var resp kalshi.OrderResponse
		resp.Order.OrderID = "ord-1"
		resp.Order.Status = "executed"
		resp.Order.TakerFillCount = req.Count
		resp.Order.TakerFillCost = int64(req.Count * req.YesPrice)
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("GET /portfolio/balance", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance":125000}`))
	})
	mux.HandleFunc("GET /portfolio/positions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"positions":[{"ticker":"GAME-X","position":10},{"ticker":"OTHER","position":-5}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTrader(t *testing.T) (*Trader, *marketdata.Poller) {
	t.Helper()

	srv := fakeVenue(t)
	client := kalshi.New(kalshi.Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	t.Cleanup(client.Close)

	logger := discardLogger()
	sessions := session.NewManager(client, session.Config{}, logger)
	poller := marketdata.NewPoller(client, sessions, nil, marketdata.Config{}, logger)
	agg := stats.NewAggregator()
	orders := executor.NewExecutor(client, sessions, poller, agg, nil, executor.Config{}, logger)

	return New(sessions, poller, orders, agg, client, logger), poller
}

// pollOnce drives one poll cycle through the public Run loop.
func pollOnce(t *testing.T, p *marketdata.Poller) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := p.Latest(); ok {
			cancel()
			<-done
			return
		}
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatal("poller produced no snapshot")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestOperatorWorkflow(t *testing.T) {
	tr, poller := newTrader(t)
	ctx := context.Background()

	// Trading before login fails fast.
	if _, err := tr.SetMarket(ctx, "GAME-X"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("SetMarket before login = %v, want ErrNotAuthenticated", err)
	}

	sess, err := tr.Authenticate(ctx, domain.Credentials{Email: "op@example.com", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if sess.Status != domain.SessionAuthenticated {
		t.Fatalf("Status = %s", sess.Status)
	}

	// Unknown ticker is rejected by the venue before becoming active.
	if _, err := tr.SetMarket(ctx, "NO-SUCH"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("SetMarket unknown = %v, want ErrNotFound", err)
	}

	market, err := tr.SetMarket(ctx, "GAME-X")
	if err != nil {
		t.Fatalf("SetMarket: %v", err)
	}
	if market.Ticker != "GAME-X" {
		t.Errorf("market = %+v", market)
	}

	// No snapshot until the poller has run.
	if _, err := tr.Execute(ctx, domain.SideYes, domain.ActionBuy, 10); !errors.Is(err, domain.ErrSnapshotUnavailable) {
		t.Fatalf("Execute before poll = %v, want ErrSnapshotUnavailable", err)
	}

	pollOnce(t, poller)

	snap, ok, degraded := tr.Snapshot()
	if !ok || degraded {
		t.Fatalf("Snapshot: ok %v degraded %v", ok, degraded)
	}
	if snap.YesAsk != 52 {
		t.Errorf("YesAsk = %d", snap.YesAsk)
	}

	result, err := tr.Execute(ctx, domain.SideYes, domain.ActionBuy, 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != domain.OutcomeFilled || result.LimitPrice != 55 {
		t.Errorf("result = %+v", result)
	}

	s := tr.Stats()
	if s.TradeCount != 1 || s.Filled != 1 {
		t.Errorf("stats = %+v", s)
	}

	balance, err := tr.Balance(ctx)
	if err != nil || balance != 125000 {
		t.Errorf("Balance = %d, %v", balance, err)
	}

	// Positions are filtered to the active market.
	positions, err := tr.Positions(ctx)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(positions) != 1 || positions[0].Ticker != "GAME-X" {
		t.Errorf("positions = %+v", positions)
	}

	tr.ResetStats()
	if s := tr.Stats(); s.TradeCount != 0 {
		t.Errorf("stats after reset = %+v", s)
	}
}

func TestSetMarketRequiresTicker(t *testing.T) {
	tr, _ := newTrader(t)

	_, err := tr.SetMarket(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}
