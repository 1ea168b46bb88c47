// Package config defines the top-level configuration for the trading
// console and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PITBOT_* environment variables.
type Config struct {
	Kalshi   KalshiConfig  `toml:"kalshi"`
	Session  SessionConfig `toml:"session"`
	Trading  TradingConfig `toml:"trading"`
	Redis    RedisConfig   `toml:"redis"`
	Server   ServerConfig  `toml:"server"`
	Notify   NotifyConfig  `toml:"notify"`
	LogLevel string        `toml:"log_level"`
}

// KalshiConfig holds exchange API endpoint and login credentials.
type KalshiConfig struct {
	BaseURL  string `toml:"base_url"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
	// Timeout bounds every HTTP call to the venue.
	Timeout duration `toml:"timeout"`
	// ReadPerSec / WritePerSec cap request rates per the venue's limits.
	ReadPerSec  int `toml:"read_per_sec"`
	WritePerSec int `toml:"write_per_sec"`
}

// SessionConfig holds the token refresh schedule.
type SessionConfig struct {
	// TokenTTL is the assumed token lifetime when the venue does not
	// report one.
	TokenTTL duration `toml:"token_ttl"`
	// RefreshEvery is how often the background loop re-authenticates. Must
	// be shorter than TokenTTL.
	RefreshEvery duration `toml:"refresh_every"`
	// RefreshSkew refreshes this long before a server-reported expiry.
	RefreshSkew  duration `toml:"refresh_skew"`
	MaxRetries   int      `toml:"max_retries"`
	RetryBackoff duration `toml:"retry_backoff"`
}

// TradingConfig holds the polling cadence and order pricing parameters.
type TradingConfig struct {
	// PollInterval is the market data polling cadence.
	PollInterval duration `toml:"poll_interval"`
	// DegradedAfter marks the feed degraded after this many consecutive
	// poll failures.
	DegradedAfter int `toml:"degraded_after"`
	// MinDepth is the minimum resting contracts on the relevant side
	// before an order is allowed out.
	MinDepth int64 `toml:"min_depth"`
	// BuyOffsetCents is added to the best ask when buying; SellOffsetCents
	// is subtracted from the best bid when selling. Both trade price for
	// immediacy.
	BuyOffsetCents  int `toml:"buy_offset_cents"`
	SellOffsetCents int `toml:"sell_offset_cents"`
	// OrderTimeout bounds the order round trip.
	OrderTimeout duration `toml:"order_timeout"`
}

// RedisConfig holds Redis connection parameters. Redis is optional; when
// disabled the event bus runs in process and snapshots are not mirrored.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey protects the API when set; empty disables auth for local use.
	APIKey string `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Kalshi: KalshiConfig{
			BaseURL:     "https://api.elections.kalshi.com/trade-api/v2",
			Timeout:     duration{10 * time.Second},
			ReadPerSec:  20,
			WritePerSec: 10,
		},
		Session: SessionConfig{
			TokenTTL:     duration{30 * time.Minute},
			RefreshEvery: duration{25 * time.Minute},
			RefreshSkew:  duration{5 * time.Minute},
			MaxRetries:   3,
			RetryBackoff: duration{2 * time.Second},
		},
		Trading: TradingConfig{
			PollInterval:    duration{time.Second},
			DegradedAfter:   3,
			MinDepth:        500,
			BuyOffsetCents:  3,
			SellOffsetCents: 2,
			OrderTimeout:    duration{3 * time.Second},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"order_filled", "order_failed", "session_failed"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Kalshi
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Kalshi.Timeout.Duration <= 0 {
		errs = append(errs, "kalshi: timeout must be positive")
	}
	if c.Kalshi.ReadPerSec < 1 {
		errs = append(errs, "kalshi: read_per_sec must be >= 1")
	}
	if c.Kalshi.WritePerSec < 1 {
		errs = append(errs, "kalshi: write_per_sec must be >= 1")
	}

	// Session
	if c.Session.TokenTTL.Duration <= 0 {
		errs = append(errs, "session: token_ttl must be positive")
	}
	if c.Session.RefreshEvery.Duration <= 0 {
		errs = append(errs, "session: refresh_every must be positive")
	}
	if c.Session.RefreshEvery.Duration >= c.Session.TokenTTL.Duration {
		errs = append(errs, "session: refresh_every must be shorter than token_ttl")
	}
	if c.Session.MaxRetries < 1 {
		errs = append(errs, "session: max_retries must be >= 1")
	}

	// Trading
	if c.Trading.PollInterval.Duration < 100*time.Millisecond {
		errs = append(errs, "trading: poll_interval must be >= 100ms")
	}
	if c.Trading.DegradedAfter < 1 {
		errs = append(errs, "trading: degraded_after must be >= 1")
	}
	if c.Trading.MinDepth < 0 {
		errs = append(errs, "trading: min_depth must be >= 0")
	}
	if c.Trading.BuyOffsetCents < 0 || c.Trading.SellOffsetCents < 0 {
		errs = append(errs, "trading: price offsets must be >= 0")
	}
	if c.Trading.OrderTimeout.Duration <= 0 {
		errs = append(errs, "trading: order_timeout must be positive")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
