package domain

import "time"

// SessionStats is a consistent copy of the running session metrics. Counts
// and latency extrema cover every recorded order result regardless of
// outcome; guard failures that never reached the network are not counted.
type SessionStats struct {
	TradeCount      int
	Filled          int
	PartiallyFilled int
	Rejected        int
	TimedOut        int
	SumLatency      time.Duration
	MinLatency      time.Duration
	MaxLatency      time.Duration
	Recent          []OrderResult // most recent results, newest last
}

// AvgLatency returns the mean round-trip latency, or zero when no trades
// have been recorded.
func (s SessionStats) AvgLatency() time.Duration {
	if s.TradeCount == 0 {
		return 0
	}
	return s.SumLatency / time.Duration(s.TradeCount)
}
