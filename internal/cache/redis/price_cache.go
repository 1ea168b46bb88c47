package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openoutcry/pitbot/internal/domain"
)

// snapshotTTL keeps stale mirrors from outliving the session that wrote
// them. The poller rewrites the key every second while healthy.
const snapshotTTL = 30 * time.Second

// PriceCache mirrors the latest PriceSnapshot per ticker as a JSON value at
// key "snapshot:{ticker}".
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.Underlying()}
}

func snapshotKey(ticker string) string {
	return "snapshot:" + ticker
}

// SetSnapshot stores the snapshot for its ticker.
func (pc *PriceCache) SetSnapshot(ctx context.Context, snap domain.PriceSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot %s: %w", snap.Ticker, err)
	}
	if err := pc.rdb.Set(ctx, snapshotKey(snap.Ticker), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot %s: %w", snap.Ticker, err)
	}
	return nil
}

// GetSnapshot retrieves the mirrored snapshot for a ticker. It returns
// domain.ErrNotFound when no mirror exists (or it has expired).
func (pc *PriceCache) GetSnapshot(ctx context.Context, ticker string) (domain.PriceSnapshot, error) {
	data, err := pc.rdb.Get(ctx, snapshotKey(ticker)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PriceSnapshot{}, domain.ErrNotFound
		}
		return domain.PriceSnapshot{}, fmt.Errorf("redis: get snapshot %s: %w", ticker, err)
	}

	var snap domain.PriceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.PriceSnapshot{}, fmt.Errorf("redis: unmarshal snapshot %s: %w", ticker, err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
