package kalshi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	t.Cleanup(c.Close)
	return c
}

func TestLoginParsesResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		w.Write([]byte(`{"token":"tok-1","member_id":"m-1","expires_ts":1700000000}`))
	}))

	resp, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "tok-1" || resp.MemberID != "m-1" || resp.ExpiresTS != 1700000000 {
		t.Errorf("response = %+v", resp)
	}
}

func TestLoginMissingTokenFails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"member_id":"m-1"}`))
	}))

	_, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "pw"})
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestAuthenticatedCallsCarryBearerToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		w.Write([]byte(`{"market":{"ticker":"GAME-X","status":"open","yes_bid":50,"yes_ask":52}}`))
	}))

	m, err := c.GetMarket(context.Background(), "tok-1", "GAME-X")
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	if m.Ticker != "GAME-X" || m.YesAsk != 52 {
		t.Errorf("market = %+v", m)
	}
}

func TestGetOrderbookDecodesDepth(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/GAME-X/orderbook" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"orderbook":{"yes":[{"price":50,"quantity":700},{"price":49,"quantity":500}],"no":[{"price":48,"quantity":250}]}}`))
	}))

	book, err := c.GetOrderbook(context.Background(), "tok", "GAME-X")
	if err != nil {
		t.Fatalf("GetOrderbook: %v", err)
	}
	if got := Depth(book.YesBids); got != 1200 {
		t.Errorf("yes depth = %d, want 1200", got)
	}
	if got := Depth(book.NoBids); got != 250 {
		t.Errorf("no depth = %d, want 250", got)
	}
	if book.Ticker != "GAME-X" {
		t.Errorf("Ticker = %q", book.Ticker)
	}
}

func TestStatusCodeClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrAuthenticationFailed},
		{http.StatusForbidden, domain.ErrAuthenticationFailed},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusBadRequest, domain.ErrServerRejected},
		{http.StatusConflict, domain.ErrServerRejected},
		{http.StatusUnprocessableEntity, domain.ErrServerRejected},
		{http.StatusInternalServerError, domain.ErrServerRejected},
	}

	for _, tc := range cases {
		if err := checkStatus(tc.status, []byte(`{"code":"x","message":"y"}`)); !errors.Is(err, tc.want) {
			t.Errorf("checkStatus(%d) = %v, want %v", tc.status, err, tc.want)
		}
	}

	if err := checkStatus(http.StatusOK, nil); err != nil {
		t.Errorf("checkStatus(200) = %v, want nil", err)
	}
}

func TestTimeoutClassifiedAsTimedOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetBalance(ctx, "tok")
	if !errors.Is(err, domain.ErrTimedOut) {
		t.Fatalf("err = %v, want ErrTimedOut", err)
	}
}

func TestConnectionFailureClassifiedAsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := New(Config{BaseURL: srv.URL, Timeout: time.Second})
	defer c.Close()

	_, err := c.GetBalance(context.Background(), "tok")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestCreateOrderParsesFills(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/portfolio/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"order":{"order_id":"ord-1","status":"executed","taker_fill_count":10,"taker_fill_cost":550,"remaining_count":0}}`))
	}))

	resp, err := c.CreateOrder(context.Background(), "tok", CreateOrderRequest{
		Ticker: "GAME-X", ClientOrderID: "c-1", Side: "yes", Action: "buy",
		Count: 10, Type: "limit", YesPrice: 55,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if resp.Order.OrderID != "ord-1" || resp.Order.TakerFillCount != 10 || resp.Order.TakerFillCost != 550 {
		t.Errorf("order = %+v", resp.Order)
	}
}
