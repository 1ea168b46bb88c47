// Package session owns the authentication lifecycle against the exchange:
// login, bearer-token storage, proactive background refresh, and the
// failure state the operator recovers from by re-authenticating.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
	"github.com/openoutcry/pitbot/internal/platform/kalshi"
)

// Config holds the manager's timing parameters.
type Config struct {
	// TokenTTL is the assumed token lifetime when the venue does not report
	// one. Kalshi tokens expire after 30 minutes.
	TokenTTL time.Duration
	// RefreshEvery is how often the background loop re-authenticates;
	// it must be strictly shorter than TokenTTL. Default 25 minutes.
	RefreshEvery time.Duration
	// RefreshSkew refreshes this long before a server-reported expiry when
	// that lands sooner than RefreshEvery.
	RefreshSkew time.Duration
	// MaxRetries bounds automatic refresh retries before giving up and
	// requiring manual re-authentication.
	MaxRetries int
	// RetryBackoff is the base delay between refresh retries.
	RetryBackoff time.Duration
	// OnTransition, when set, is invoked after every status change. It is
	// called outside the manager's lock.
	OnTransition func(domain.Session)
}

func (c *Config) applyDefaults() {
	if c.TokenTTL <= 0 {
		c.TokenTTL = 30 * time.Minute
	}
	if c.RefreshEvery <= 0 {
		c.RefreshEvery = 25 * time.Minute
	}
	if c.RefreshSkew <= 0 {
		c.RefreshSkew = 5 * time.Minute
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
}

// Manager is the single writer of session state. Readers take lock-free
// snapshots via Current/Token; Authenticate and the refresh loop serialize
// on an internal mutex so the state machine never races with itself.
type Manager struct {
	client *kalshi.Client
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex // serializes writers and guards creds
	creds    domain.Credentials
	hasCreds bool

	cur  atomic.Pointer[domain.Session]
	kick chan struct{} // wakes the refresh loop after Authenticate
}

// NewManager creates a Manager in the Unauthenticated state.
func NewManager(client *kalshi.Client, cfg Config, logger *slog.Logger) *Manager {
	cfg.applyDefaults()
	m := &Manager{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "session")),
		kick:   make(chan struct{}, 1),
	}
	m.cur.Store(&domain.Session{Status: domain.SessionUnauthenticated})
	return m
}

// Current returns a consistent snapshot of the session.
func (m *Manager) Current() domain.Session {
	return *m.cur.Load()
}

// Token returns the active bearer token. It never blocks on a refresh in
// flight: while Refreshing, the prior still-valid token is returned so no
// caller observes a gap mid-refresh.
func (m *Manager) Token() (string, error) {
	s := m.cur.Load()
	if !s.Usable() {
		return "", domain.ErrNotAuthenticated
	}
	return s.Token, nil
}

// Authenticate performs a login with the given credentials. On success the
// session transitions to Authenticated and the background refresh schedule
// restarts from now; on failure it transitions to Failed with the cause.
func (m *Manager) Authenticate(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creds = creds
	m.hasCreds = true
	m.store(domain.Session{Status: domain.SessionAuthenticating})

	sess, err := m.login(ctx, creds)
	if err != nil {
		m.store(domain.Session{Status: domain.SessionFailed})
		m.logger.Error("authentication failed", slog.String("error", err.Error()))
		return m.Current(), err
	}

	m.store(sess)
	m.logger.Info("authenticated",
		slog.String("member_id", sess.MemberID),
		slog.Time("expires_at", sess.ExpiresAt),
	)

	// Wake the refresh loop so it reschedules against the new expiry.
	select {
	case m.kick <- struct{}{}:
	default:
	}

	return sess, nil
}

// ResetSession discards the current token and logs in again with the stored
// credentials. Unlike the background refresh the old token is dropped first,
// so this also recovers from a venue-side session invalidation.
func (m *Manager) ResetSession(ctx context.Context) (domain.Session, error) {
	m.mu.Lock()
	creds, ok := m.creds, m.hasCreds
	m.mu.Unlock()
	if !ok {
		return m.Current(), domain.ErrNotAuthenticated
	}
	return m.Authenticate(ctx, creds)
}

// Run drives the proactive refresh loop until the context is cancelled.
// Refresh fires RefreshEvery after the last successful (re)authentication,
// or RefreshSkew before a server-reported expiry if that lands sooner.
func (m *Manager) Run(ctx context.Context) error {
	timer := time.NewTimer(m.nextRefreshIn())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.kick:
			// Re-authentication happened; reschedule.
		case <-timer.C:
			if m.Current().Status == domain.SessionAuthenticated {
				m.refresh(ctx)
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(m.nextRefreshIn())
	}
}

// refresh re-authenticates with the stored credentials. The session stays
// logically authenticated on the old token until the new one is confirmed.
// Retries are bounded per the central policy; exhaustion transitions to
// Failed and every subsequent call fails fast until the operator
// re-authenticates.
func (m *Manager) refresh(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasCreds {
		return
	}
	prev := m.Current()
	if prev.Status != domain.SessionAuthenticated {
		return
	}

	prev.Status = domain.SessionRefreshing
	m.store(prev)

	attempts := m.cfg.MaxRetries
	if domain.RetryClassFor(domain.OpAuthenticate) != domain.RetryBounded {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				i = attempts
				continue
			case <-time.After(m.cfg.RetryBackoff * time.Duration(i)):
			}
		}

		sess, err := m.login(ctx, m.creds)
		if err != nil {
			lastErr = err
			m.logger.Warn("token refresh attempt failed",
				slog.Int("attempt", i+1),
				slog.Int("max", attempts),
				slog.String("error", err.Error()),
			)
			continue
		}

		m.store(sess)
		m.logger.Info("token refreshed", slog.Time("expires_at", sess.ExpiresAt))
		return
	}

	m.store(domain.Session{Status: domain.SessionFailed})
	m.logger.Error("token refresh exhausted retries, manual re-authentication required",
		slog.String("error", errString(lastErr)),
	)
}

// login calls the venue and builds the resulting session snapshot.
func (m *Manager) login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	now := time.Now()

	resp, err := m.client.Login(ctx, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session: %w", err)
	}

	expires := now.Add(m.cfg.TokenTTL)
	if resp.ExpiresTS > 0 {
		// Server-reported expiry is authoritative over the assumed TTL.
		expires = time.Unix(resp.ExpiresTS, 0)
	}

	return domain.Session{
		Token:     resp.Token,
		MemberID:  resp.MemberID,
		IssuedAt:  now,
		ExpiresAt: expires,
		Status:    domain.SessionAuthenticated,
	}, nil
}

// nextRefreshIn computes the delay until the next refresh attempt.
func (m *Manager) nextRefreshIn() time.Duration {
	wait := m.cfg.RefreshEvery

	s := m.cur.Load()
	if s.Status == domain.SessionAuthenticated && !s.ExpiresAt.IsZero() {
		if until := time.Until(s.ExpiresAt) - m.cfg.RefreshSkew; until < wait {
			wait = until
		}
	}
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// store publishes a new session snapshot and fires the transition hook.
func (m *Manager) store(s domain.Session) {
	m.cur.Store(&s)
	if m.cfg.OnTransition != nil {
		go m.cfg.OnTransition(s)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
