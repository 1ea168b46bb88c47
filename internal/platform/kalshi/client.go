// Package kalshi is the REST client for the Kalshi trading API. The client
// keeps a pooled, keep-alive transport to a single API host so that the
// operator-facing order path pays no connection-setup cost.
package kalshi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/openoutcry/pitbot/internal/domain"
)

// Config holds the client's connection parameters.
type Config struct {
	// BaseURL is the API root, e.g. "https://trading-api.kalshi.com/trade-api/v2".
	BaseURL string
	// Timeout bounds every request end to end. Zero means 10s.
	Timeout time.Duration
	// ReadPerSec / WritePerSec throttle outbound calls below the venue's
	// published rate limits. Zero means 20 and 10 respectively.
	ReadPerSec  float64
	WritePerSec float64
}

// Client is the REST client. All methods that hit authenticated endpoints
// take the bearer token explicitly; the session manager owns token state.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	readLimiter  *rate.Limiter
	writeLimiter *rate.Limiter
}

// New creates a Client with a transport tuned for low connection-setup
// overhead: persistent connections to the single API host, no hot-path
// response compression.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	readPS := cfg.ReadPerSec
	if readPS <= 0 {
		readPS = 20
	}
	writePS := cfg.WritePerSec
	if writePS <= 0 {
		writePS = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		DisableCompression:  true,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		readLimiter:  rate.NewLimiter(rate.Limit(readPS), int(readPS)),
		writeLimiter: rate.NewLimiter(rate.Limit(writePS), int(writePS)),
	}
}

// Close releases the transport's pooled connections.
func (c *Client) Close() {
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

// Login authenticates with email/password and returns the bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (LoginResponse, error) {
	req := loginRequest{Email: creds.Email, Password: creds.Password}

	body, err := c.do(ctx, http.MethodPost, "/login", "", req)
	if err != nil {
		// The venue answers bad credentials with 401, which checkStatus
		// maps to ErrAuthenticationFailed already; everything else keeps
		// its transport classification.
		return LoginResponse{}, fmt.Errorf("kalshi: login: %w", err)
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return LoginResponse{}, fmt.Errorf("kalshi: decode login response: %w", err)
	}
	if resp.Token == "" {
		return LoginResponse{}, fmt.Errorf("kalshi: login response missing token: %w", domain.ErrAuthenticationFailed)
	}

	return resp, nil
}

// GetMarket returns a single market by its ticker.
func (c *Client) GetMarket(ctx context.Context, token, ticker string) (Market, error) {
	path := fmt.Sprintf("/markets/%s", url.PathEscape(ticker))

	body, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return Market{}, fmt.Errorf("kalshi: get market %s: %w", ticker, err)
	}

	var resp struct {
		Market Market `json:"market"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Market{}, fmt.Errorf("kalshi: decode market: %w", err)
	}

	return resp.Market, nil
}

// GetOrderbook returns the current orderbook for the given market ticker.
func (c *Client) GetOrderbook(ctx context.Context, token, ticker string) (Orderbook, error) {
	path := fmt.Sprintf("/markets/%s/orderbook", url.PathEscape(ticker))

	body, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return Orderbook{}, fmt.Errorf("kalshi: get orderbook %s: %w", ticker, err)
	}

	var resp struct {
		Orderbook Orderbook `json:"orderbook"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Orderbook{}, fmt.Errorf("kalshi: decode orderbook: %w", err)
	}

	resp.Orderbook.Ticker = ticker
	resp.Orderbook.Timestamp = time.Now()

	return resp.Orderbook, nil
}

// CreateOrder submits a new order and returns the venue's view of it.
func (c *Client) CreateOrder(ctx context.Context, token string, order CreateOrderRequest) (OrderResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/portfolio/orders", token, order)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("kalshi: create order: %w", err)
	}

	var resp OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return OrderResponse{}, fmt.Errorf("kalshi: decode order response: %w", err)
	}

	return resp, nil
}

// GetBalance returns the account balance in cents.
func (c *Client) GetBalance(ctx context.Context, token string) (BalanceResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/portfolio/balance", token, nil)
	if err != nil {
		return BalanceResponse{}, fmt.Errorf("kalshi: get balance: %w", err)
	}

	var resp BalanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return BalanceResponse{}, fmt.Errorf("kalshi: decode balance: %w", err)
	}

	return resp, nil
}

// GetPositions returns all open positions.
func (c *Client) GetPositions(ctx context.Context, token string) ([]Position, error) {
	body, err := c.do(ctx, http.MethodGet, "/portfolio/positions", token, nil)
	if err != nil {
		return nil, fmt.Errorf("kalshi: get positions: %w", err)
	}

	var resp struct {
		Positions []Position `json:"positions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode positions: %w", err)
	}

	return resp.Positions, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// do builds, sends, and reads an HTTP request against the API, classifying
// failures into the shared error kinds.
func (c *Client) do(ctx context.Context, method, path, token string, reqBody any) ([]byte, error) {
	lim := c.readLimiter
	if method != http.MethodGet {
		lim = c.writeLimiter
	}
	if err := lim.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %w", err, domain.ErrNetwork)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// classifyTransportErr maps transport-level failures onto the shared error
// kinds: deadline exhaustion becomes ErrTimedOut, everything else ErrNetwork.
func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("http request: %w: %w", err, domain.ErrTimedOut)
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return fmt.Errorf("http request: %w: %w", err, domain.ErrTimedOut)
	}
	return fmt.Errorf("http request: %w: %w", err, domain.ErrNetwork)
}

// checkStatus maps non-2xx HTTP status codes onto the shared error kinds.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr ErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s (%s): %w", apiErr.Message, apiErr.Code, domain.ErrAuthenticationFailed)
	case http.StatusNotFound:
		return fmt.Errorf("%s (%s): %w", apiErr.Message, apiErr.Code, domain.ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s (%s): %w", apiErr.Message, apiErr.Code, domain.ErrRateLimited)
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s (%s): %w", apiErr.Message, apiErr.Code, domain.ErrServerRejected)
	default:
		return fmt.Errorf("HTTP %d: %s (%s): %w", statusCode, apiErr.Message, apiErr.Code, domain.ErrServerRejected)
	}
}
