package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults() does not validate: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
log_level = "debug"

[kalshi]
email = "op@example.com"
password = "hunter2"
timeout = "5s"

[trading]
poll_interval = "500ms"
min_depth = 750

[server]
port = 9000
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Kalshi.Email != "op@example.com" {
		t.Errorf("Email = %q", cfg.Kalshi.Email)
	}
	if cfg.Kalshi.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Kalshi.Timeout.Duration)
	}
	if cfg.Trading.PollInterval.Duration != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", cfg.Trading.PollInterval.Duration)
	}
	if cfg.Trading.MinDepth != 750 {
		t.Errorf("MinDepth = %d, want 750", cfg.Trading.MinDepth)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}

	// Untouched sections keep their defaults.
	if cfg.Kalshi.BaseURL == "" {
		t.Error("BaseURL default lost")
	}
	if cfg.Trading.BuyOffsetCents != 3 || cfg.Trading.SellOffsetCents != 2 {
		t.Errorf("offsets = %d/%d, want 3/2", cfg.Trading.BuyOffsetCents, cfg.Trading.SellOffsetCents)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PITBOT_KALSHI_PASSWORD", "from-env")
	t.Setenv("PITBOT_TRADING_MIN_DEPTH", "900")
	t.Setenv("PITBOT_SESSION_REFRESH_EVERY", "10m")
	t.Setenv("PITBOT_REDIS_ENABLED", "true")
	t.Setenv("PITBOT_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Kalshi.Password != "from-env" {
		t.Errorf("Password = %q", cfg.Kalshi.Password)
	}
	if cfg.Trading.MinDepth != 900 {
		t.Errorf("MinDepth = %d, want 900", cfg.Trading.MinDepth)
	}
	if cfg.Session.RefreshEvery.Duration != 10*time.Minute {
		t.Errorf("RefreshEvery = %v, want 10m", cfg.Session.RefreshEvery.Duration)
	}
	if !cfg.Redis.Enabled {
		t.Error("Redis.Enabled not overridden")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Kalshi.BaseURL = ""
	cfg.Session.RefreshEvery.Duration = cfg.Session.TokenTTL.Duration
	cfg.Server.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"log_level", "base_url", "refresh_every", "port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Kalshi.Password = "hunter2"
	cfg.Redis.Password = "redispw"
	cfg.Server.APIKey = "key"
	cfg.Notify.TelegramToken = "tg-token"

	red := RedactedConfig(&cfg)

	if red.Kalshi.Password != "***" || red.Redis.Password != "***" ||
		red.Server.APIKey != "***" || red.Notify.TelegramToken != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}

	// Original untouched.
	if cfg.Kalshi.Password != "hunter2" {
		t.Error("redaction mutated the original config")
	}

	// Empty secrets stay empty rather than becoming "***".
	if red.Notify.DiscordWebhookURL != "" {
		t.Errorf("empty secret redacted to %q", red.Notify.DiscordWebhookURL)
	}
}
