package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/openoutcry/pitbot/internal/domain"
)

// AuthService defines the methods the auth handler requires from the
// trading layer.
type AuthService interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	ResetSession(ctx context.Context) (domain.Session, error)
	Session() domain.Session
}

// AuthHandler serves session lifecycle endpoints.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger

	// defaults come from configuration so the operator can authenticate
	// with an empty request body.
	defaultCreds domain.Credentials
}

// NewAuthHandler creates an AuthHandler. defaultCreds may be zero; then the
// request body must carry the credentials.
func NewAuthHandler(svc AuthService, defaultCreds domain.Credentials, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		logger:       logHandler(logger, "auth"),
		defaultCreds: defaultCreds,
	}
}

// authRequest is the optional login body.
type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the session snapshot returned to the operator. The
// token itself never leaves the process.
type sessionResponse struct {
	Status    domain.SessionStatus `json:"status"`
	MemberID  string               `json:"member_id,omitempty"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}

func toSessionResponse(s domain.Session) sessionResponse {
	resp := sessionResponse{Status: s.Status, MemberID: s.MemberID}
	if !s.ExpiresAt.IsZero() {
		t := s.ExpiresAt.UTC()
		resp.ExpiresAt = &t
	}
	return resp
}

// Login authenticates against the venue. Credentials in the body override
// the configured defaults.
// POST /api/auth
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds := h.defaultCreds

	if r.ContentLength != 0 {
		var req authRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.Email != "" {
			creds = domain.Credentials{Email: req.Email, Password: req.Password}
		}
	}

	if creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	sess, err := h.svc.Authenticate(r.Context(), creds)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "login failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// ResetSession drops the current token and logs in again with the stored
// credentials.
// POST /api/reset-session
func (h *AuthHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.ResetSession(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "session reset failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}
