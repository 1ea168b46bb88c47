package stats

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/openoutcry/pitbot/internal/domain"
)

func result(outcome domain.Outcome, latency time.Duration) domain.OrderResult {
	return domain.OrderResult{
		Outcome:  outcome,
		Ticker:   "GAME-X",
		Side:     domain.SideYes,
		Action:   domain.ActionBuy,
		Quantity: 10,
		Latency:  latency,
	}
}

func TestAggregatorLatencyMetrics(t *testing.T) {
	a := NewAggregator()

	a.Record(result(domain.OutcomeFilled, 120*time.Millisecond))
	a.Record(result(domain.OutcomeFilled, 80*time.Millisecond))
	a.Record(result(domain.OutcomeRejected, 300*time.Millisecond))

	s := a.Snapshot()

	if s.TradeCount != 3 {
		t.Fatalf("TradeCount = %d, want 3", s.TradeCount)
	}
	if s.MinLatency != 80*time.Millisecond {
		t.Errorf("MinLatency = %v, want 80ms", s.MinLatency)
	}
	if s.MaxLatency != 300*time.Millisecond {
		t.Errorf("MaxLatency = %v, want 300ms", s.MaxLatency)
	}
	wantAvg := 500 * time.Millisecond / 3
	if got := s.AvgLatency(); got != wantAvg {
		t.Errorf("AvgLatency = %v, want %v", got, wantAvg)
	}
	if s.Filled != 2 || s.Rejected != 1 {
		t.Errorf("outcome counts = filled %d rejected %d, want 2/1", s.Filled, s.Rejected)
	}
}

func TestAggregatorEmptySnapshot(t *testing.T) {
	a := NewAggregator()
	s := a.Snapshot()

	if s.TradeCount != 0 {
		t.Fatalf("TradeCount = %d, want 0", s.TradeCount)
	}
	if s.MinLatency != 0 || s.MaxLatency != 0 || s.AvgLatency() != 0 {
		t.Errorf("empty aggregator reports nonzero latencies: %+v", s)
	}
	if len(s.Recent) != 0 {
		t.Errorf("Recent = %d entries, want 0", len(s.Recent))
	}
}

func TestAggregatorMinTracksFirstRecord(t *testing.T) {
	a := NewAggregator()
	a.Record(result(domain.OutcomeFilled, 250*time.Millisecond))

	s := a.Snapshot()
	if s.MinLatency != 250*time.Millisecond {
		t.Errorf("MinLatency after single record = %v, want 250ms", s.MinLatency)
	}
	if s.MaxLatency != 250*time.Millisecond {
		t.Errorf("MaxLatency after single record = %v, want 250ms", s.MaxLatency)
	}
}

func TestAggregatorRecentRing(t *testing.T) {
	a := NewAggregator()
	for i := 0; i < 15; i++ {
		a.Record(result(domain.OutcomeFilled, time.Duration(i+1)*time.Millisecond))
	}

	s := a.Snapshot()
	if len(s.Recent) != recentKeep {
		t.Fatalf("Recent holds %d entries, want %d", len(s.Recent), recentKeep)
	}
	// Oldest retained entry is trade 6 (1-based), newest is trade 15.
	if s.Recent[0].Latency != 6*time.Millisecond {
		t.Errorf("oldest retained latency = %v, want 6ms", s.Recent[0].Latency)
	}
	if s.Recent[len(s.Recent)-1].Latency != 15*time.Millisecond {
		t.Errorf("newest retained latency = %v, want 15ms", s.Recent[len(s.Recent)-1].Latency)
	}
}

func TestAggregatorReset(t *testing.T) {
	a := NewAggregator()
	a.Record(result(domain.OutcomeFilled, 100*time.Millisecond))
	a.Record(result(domain.OutcomeTimedOut, 3*time.Second))

	a.Reset()
	s := a.Snapshot()

	if s.TradeCount != 0 || s.TimedOut != 0 || len(s.Recent) != 0 {
		t.Errorf("snapshot after reset not empty: %+v", s)
	}
	if s.SumLatency != 0 || s.MinLatency != 0 || s.MaxLatency != 0 {
		t.Errorf("latency metrics survive reset: %+v", s)
	}
}

func TestAggregatorSnapshotIsCopy(t *testing.T) {
	a := NewAggregator()
	a.Record(result(domain.OutcomeFilled, 100*time.Millisecond))

	s := a.Snapshot()
	s.Recent[0].Ticker = "MUTATED"

	if got := a.Snapshot().Recent[0].Ticker; got != "GAME-X" {
		t.Errorf("mutating a snapshot leaked into the aggregator: %q", got)
	}
}

var outcomeGen = gen.OneConstOf(
	domain.OutcomeFilled,
	domain.OutcomePartiallyFilled,
	domain.OutcomeRejected,
	domain.OutcomeTimedOut,
)

func TestAggregatorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	latenciesGen := gen.SliceOf(gen.Int64Range(1, 5_000)) // milliseconds
	outcomesGen := gen.SliceOf(outcomeGen)

	properties.Property("counts partition trades by outcome", prop.ForAll(
		func(latencies []int64, outcomes []domain.Outcome) bool {
			a := NewAggregator()
			n := len(latencies)
			if len(outcomes) < n {
				n = len(outcomes)
			}
			for i := 0; i < n; i++ {
				a.Record(result(outcomes[i], time.Duration(latencies[i])*time.Millisecond))
			}

			s := a.Snapshot()
			return s.TradeCount == n &&
				s.Filled+s.PartiallyFilled+s.Rejected+s.TimedOut == n
		},
		latenciesGen, outcomesGen,
	))

	properties.Property("min <= avg <= max when any trade recorded", prop.ForAll(
		func(latencies []int64) bool {
			if len(latencies) == 0 {
				return true
			}
			a := NewAggregator()
			for _, ms := range latencies {
				a.Record(result(domain.OutcomeFilled, time.Duration(ms)*time.Millisecond))
			}

			s := a.Snapshot()
			avg := s.AvgLatency()
			return s.MinLatency <= avg && avg <= s.MaxLatency
		},
		latenciesGen,
	))

	properties.Property("recent never exceeds the ring size", prop.ForAll(
		func(latencies []int64) bool {
			a := NewAggregator()
			for _, ms := range latencies {
				a.Record(result(domain.OutcomeFilled, time.Duration(ms)*time.Millisecond))
			}

			s := a.Snapshot()
			want := len(latencies)
			if want > recentKeep {
				want = recentKeep
			}
			return len(s.Recent) == want
		},
		latenciesGen,
	))

	properties.TestingRun(t)
}
