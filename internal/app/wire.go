package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openoutcry/pitbot/internal/cache/memory"
	"github.com/openoutcry/pitbot/internal/cache/redis"
	"github.com/openoutcry/pitbot/internal/config"
	"github.com/openoutcry/pitbot/internal/domain"
	"github.com/openoutcry/pitbot/internal/executor"
	"github.com/openoutcry/pitbot/internal/marketdata"
	"github.com/openoutcry/pitbot/internal/notify"
	"github.com/openoutcry/pitbot/internal/platform/kalshi"
	"github.com/openoutcry/pitbot/internal/server"
	"github.com/openoutcry/pitbot/internal/server/handler"
	"github.com/openoutcry/pitbot/internal/server/ws"
	"github.com/openoutcry/pitbot/internal/session"
	"github.com/openoutcry/pitbot/internal/stats"
	"github.com/openoutcry/pitbot/internal/trader"
)

// Dependencies bundles everything the run loop needs. It is constructed by
// Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Sessions *session.Manager
	Poller   *marketdata.Poller
	Trader   *trader.Trader
	Hub      *ws.Hub
	Server   *server.Server
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Venue client ---
	venue := kalshi.New(kalshi.Config{
		BaseURL:     cfg.Kalshi.BaseURL,
		Timeout:     cfg.Kalshi.Timeout.Duration,
		ReadPerSec:  float64(cfg.Kalshi.ReadPerSec),
		WritePerSec: float64(cfg.Kalshi.WritePerSec),
	})
	closers = append(closers, venue.Close)

	// --- Signal bus and optional snapshot mirror ---
	var bus domain.SignalBus
	var mirror domain.PriceCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		bus = redis.NewSignalBus(redisClient)
		mirror = redis.NewPriceCache(redisClient)
	} else {
		bus = memory.NewBus()
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	notifier := notify.NewNotifier(senders, cfg.Notify.Events, logger)

	events := newEventPublisher(bus, mirror, notifier, logger)

	// --- Trading components ---
	sessions := session.NewManager(venue, session.Config{
		TokenTTL:     cfg.Session.TokenTTL.Duration,
		RefreshEvery: cfg.Session.RefreshEvery.Duration,
		RefreshSkew:  cfg.Session.RefreshSkew.Duration,
		MaxRetries:   cfg.Session.MaxRetries,
		RetryBackoff: cfg.Session.RetryBackoff.Duration,
		OnTransition: events.SessionTransition,
	}, logger)

	poller := marketdata.NewPoller(venue, sessions, events, marketdata.Config{
		Interval:      cfg.Trading.PollInterval.Duration,
		DegradedAfter: cfg.Trading.DegradedAfter,
	}, logger)

	agg := stats.NewAggregator()

	orders := executor.NewExecutor(venue, sessions, poller, agg, events, executor.Config{
		MinDepth:        cfg.Trading.MinDepth,
		BuyOffsetCents:  cfg.Trading.BuyOffsetCents,
		SellOffsetCents: cfg.Trading.SellOffsetCents,
		OrderTimeout:    cfg.Trading.OrderTimeout.Duration,
	}, logger)

	trd := trader.New(sessions, poller, orders, agg, venue, logger)

	// --- HTTP and WebSocket boundary ---
	hub := ws.NewHub(bus, logger)

	defaultCreds := domain.Credentials{
		Email:    cfg.Kalshi.Email,
		Password: cfg.Kalshi.Password,
	}
	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(trd),
		Auth:      handler.NewAuthHandler(trd, defaultCreds, logger),
		Markets:   handler.NewMarketHandler(trd, logger),
		Orders:    handler.NewOrderHandler(trd, logger),
		Stats:     handler.NewStatsHandler(trd),
		Portfolio: handler.NewPortfolioHandler(trd, logger),
	}
	srv := server.NewServer(server.Config{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIKey:      cfg.Server.APIKey,
	}, handlers, hub, logger)

	return &Dependencies{
		Sessions: sessions,
		Poller:   poller,
		Trader:   trd,
		Hub:      hub,
		Server:   srv,
	}, cleanup, nil
}
