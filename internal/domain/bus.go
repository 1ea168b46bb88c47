package domain

import "context"

// Signal bus channel names used across the process.
const (
	ChannelSnapshots = "snapshots"
	ChannelTrades    = "trades"
	ChannelSession   = "session"
)

// SignalBus is a lightweight publish/subscribe fabric. The WebSocket hub
// subscribes to it and forwards every payload to connected UI clients;
// implementations exist for Redis pub/sub and for a purely in-process bus.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// PriceCache mirrors the latest snapshot prices to external consumers
// (e.g. a dashboard reading Redis directly). It is optional; the in-process
// atomic snapshot remains the authoritative copy.
type PriceCache interface {
	SetSnapshot(ctx context.Context, snap PriceSnapshot) error
	GetSnapshot(ctx context.Context, ticker string) (PriceSnapshot, error)
}
