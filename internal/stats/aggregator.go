// Package stats accumulates per-trade outcomes into running session
// metrics. Nothing is persisted: the domain is a single live event and
// statistics reset with the process (or explicitly between games).
package stats

import (
	"sync"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
)

// recentKeep is how many of the latest results are retained for the UI.
const recentKeep = 10

// Aggregator is the single writer of session statistics. Record is O(1)
// and never fails; Snapshot returns a consistent point-in-time copy and is
// safe to call concurrently with Record.
type Aggregator struct {
	mu        sync.Mutex
	count     int
	byOutcome map[domain.Outcome]int
	sum       time.Duration
	min       time.Duration
	max       time.Duration
	recent    []domain.OrderResult
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byOutcome: make(map[domain.Outcome]int)}
}

// Record folds one order result into the running metrics.
func (a *Aggregator) Record(r domain.OrderResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.count++
	a.byOutcome[r.Outcome]++
	a.sum += r.Latency
	if a.count == 1 || r.Latency < a.min {
		a.min = r.Latency
	}
	if r.Latency > a.max {
		a.max = r.Latency
	}

	a.recent = append(a.recent, r)
	if len(a.recent) > recentKeep {
		a.recent = a.recent[len(a.recent)-recentKeep:]
	}
}

// Snapshot returns a consistent copy of the current session metrics.
func (a *Aggregator) Snapshot() domain.SessionStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	recent := make([]domain.OrderResult, len(a.recent))
	copy(recent, a.recent)

	return domain.SessionStats{
		TradeCount:      a.count,
		Filled:          a.byOutcome[domain.OutcomeFilled],
		PartiallyFilled: a.byOutcome[domain.OutcomePartiallyFilled],
		Rejected:        a.byOutcome[domain.OutcomeRejected],
		TimedOut:        a.byOutcome[domain.OutcomeTimedOut],
		SumLatency:      a.sum,
		MinLatency:      a.min,
		MaxLatency:      a.max,
		Recent:          recent,
	}
}

// Reset clears all metrics, e.g. between innings or games.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.count = 0
	a.byOutcome = make(map[domain.Outcome]int)
	a.sum, a.min, a.max = 0, 0, 0
	a.recent = nil
}
