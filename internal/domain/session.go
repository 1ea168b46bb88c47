// Package domain holds the shared types passed between the session manager,
// market data poller, order executor, and the HTTP boundary.
package domain

import "time"

// Credentials is the identity/secret pair used to log in to the exchange.
// It is owned exclusively by the session manager and never leaves it.
type Credentials struct {
	Email    string
	Password string
}

// SessionStatus tracks the authentication lifecycle.
type SessionStatus string

const (
	SessionUnauthenticated SessionStatus = "unauthenticated"
	SessionAuthenticating  SessionStatus = "authenticating"
	SessionAuthenticated   SessionStatus = "authenticated"
	SessionRefreshing      SessionStatus = "refreshing"
	SessionFailed          SessionStatus = "failed"
)

// Session is an immutable snapshot of the current authentication state.
// Exactly one logical session exists per process; the session manager
// replaces the whole value on every transition so readers never observe a
// half-updated token/status pair.
type Session struct {
	Token     string
	MemberID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Status    SessionStatus
}

// Usable reports whether the session token may be attached to outbound
// requests. A refresh in flight keeps the prior token valid until the new
// one is confirmed, so Refreshing counts as usable.
func (s Session) Usable() bool {
	return s.Status == SessionAuthenticated || s.Status == SessionRefreshing
}
