package domain

// Op names the class of outbound operation for retry-policy lookup.
type Op string

const (
	OpAuthenticate Op = "authenticate"
	OpOrder        Op = "order"
	OpPoll         Op = "poll"
)

// RetryClass says how a failed operation may be retried.
type RetryClass int

const (
	// RetryNever surfaces the failure immediately; resubmission is a human
	// decision because duplicate submission risks double execution.
	RetryNever RetryClass = iota
	// RetryBounded retries a small fixed number of times with backoff,
	// then surfaces the failure as a session status change.
	RetryBounded
	// RetryNextTick recovers locally; the background loop tries again on
	// its next scheduled tick and only a degraded signal is surfaced.
	RetryNextTick
)

// retryPolicy is the single decision table for retry-or-not behavior.
// Every call site consults it through RetryClassFor instead of making the
// judgment inline.
var retryPolicy = map[Op]RetryClass{
	OpAuthenticate: RetryBounded,
	OpOrder:        RetryNever,
	OpPoll:         RetryNextTick,
}

// RetryClassFor returns the retry class for an operation kind. Unknown
// operations default to RetryNever, the conservative choice.
func RetryClassFor(op Op) RetryClass {
	if c, ok := retryPolicy[op]; ok {
		return c
	}
	return RetryNever
}
