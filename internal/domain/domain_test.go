package domain

import (
	"errors"
	"testing"
)

func TestOrderRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  OrderRequest
		ok   bool
	}{
		{"valid buy", OrderRequest{Side: SideYes, Action: ActionBuy, Quantity: 10}, true},
		{"valid sell", OrderRequest{Side: SideNo, Action: ActionSell, Quantity: 1}, true},
		{"zero quantity", OrderRequest{Side: SideYes, Action: ActionBuy, Quantity: 0}, false},
		{"negative quantity", OrderRequest{Side: SideYes, Action: ActionBuy, Quantity: -5}, false},
		{"bad side", OrderRequest{Side: "maybe", Action: ActionBuy, Quantity: 10}, false},
		{"bad action", OrderRequest{Side: SideYes, Action: "hold", Quantity: 10}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Validate() = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestSessionUsable(t *testing.T) {
	cases := []struct {
		status SessionStatus
		usable bool
	}{
		{SessionUnauthenticated, false},
		{SessionAuthenticating, false},
		{SessionAuthenticated, true},
		{SessionRefreshing, true}, // old token stays valid mid-refresh
		{SessionFailed, false},
	}

	for _, tc := range cases {
		s := Session{Token: "tok", Status: tc.status}
		if got := s.Usable(); got != tc.usable {
			t.Errorf("Usable(%s) = %v, want %v", tc.status, got, tc.usable)
		}
	}
}

func TestClampPrice(t *testing.T) {
	cases := []struct{ in, want int }{
		{-10, 1},
		{0, 1},
		{1, 1},
		{55, 55},
		{99, 99},
		{102, 99},
	}
	for _, tc := range cases {
		if got := ClampPrice(tc.in); got != tc.want {
			t.Errorf("ClampPrice(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSnapshotSideAccessors(t *testing.T) {
	s := PriceSnapshot{
		YesBid: 50, YesAsk: 52, NoBid: 48, NoAsk: 50,
		YesDepth: 1200, NoDepth: 300,
	}

	if s.BestAsk(SideYes) != 52 || s.BestAsk(SideNo) != 50 {
		t.Errorf("BestAsk = %d/%d", s.BestAsk(SideYes), s.BestAsk(SideNo))
	}
	if s.BestBid(SideYes) != 50 || s.BestBid(SideNo) != 48 {
		t.Errorf("BestBid = %d/%d", s.BestBid(SideYes), s.BestBid(SideNo))
	}
	if s.DepthFor(SideYes) != 1200 || s.DepthFor(SideNo) != 300 {
		t.Errorf("DepthFor = %d/%d", s.DepthFor(SideYes), s.DepthFor(SideNo))
	}
}

func TestRetryPolicy(t *testing.T) {
	if got := RetryClassFor(OpAuthenticate); got != RetryBounded {
		t.Errorf("authenticate = %v, want bounded", got)
	}
	if got := RetryClassFor(OpOrder); got != RetryNever {
		t.Errorf("order = %v, want never", got)
	}
	if got := RetryClassFor(OpPoll); got != RetryNextTick {
		t.Errorf("poll = %v, want next-tick", got)
	}
	if got := RetryClassFor(Op("unknown")); got != RetryNever {
		t.Errorf("unknown = %v, want never", got)
	}
}
