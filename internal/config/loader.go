package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PITBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PITBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject credentials at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, "PITBOT_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.Email, "PITBOT_KALSHI_EMAIL")
	setStr(&cfg.Kalshi.Password, "PITBOT_KALSHI_PASSWORD")
	setDuration(&cfg.Kalshi.Timeout, "PITBOT_KALSHI_TIMEOUT")
	setInt(&cfg.Kalshi.ReadPerSec, "PITBOT_KALSHI_READ_PER_SEC")
	setInt(&cfg.Kalshi.WritePerSec, "PITBOT_KALSHI_WRITE_PER_SEC")

	// ── Session ──
	setDuration(&cfg.Session.TokenTTL, "PITBOT_SESSION_TOKEN_TTL")
	setDuration(&cfg.Session.RefreshEvery, "PITBOT_SESSION_REFRESH_EVERY")
	setDuration(&cfg.Session.RefreshSkew, "PITBOT_SESSION_REFRESH_SKEW")
	setInt(&cfg.Session.MaxRetries, "PITBOT_SESSION_MAX_RETRIES")
	setDuration(&cfg.Session.RetryBackoff, "PITBOT_SESSION_RETRY_BACKOFF")

	// ── Trading ──
	setDuration(&cfg.Trading.PollInterval, "PITBOT_TRADING_POLL_INTERVAL")
	setInt(&cfg.Trading.DegradedAfter, "PITBOT_TRADING_DEGRADED_AFTER")
	setInt64(&cfg.Trading.MinDepth, "PITBOT_TRADING_MIN_DEPTH")
	setInt(&cfg.Trading.BuyOffsetCents, "PITBOT_TRADING_BUY_OFFSET_CENTS")
	setInt(&cfg.Trading.SellOffsetCents, "PITBOT_TRADING_SELL_OFFSET_CENTS")
	setDuration(&cfg.Trading.OrderTimeout, "PITBOT_TRADING_ORDER_TIMEOUT")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PITBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PITBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PITBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PITBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PITBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PITBOT_REDIS_MAX_RETRIES")

	// ── Server ──
	setInt(&cfg.Server.Port, "PITBOT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PITBOT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "PITBOT_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PITBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PITBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PITBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PITBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "PITBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
