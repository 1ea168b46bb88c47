// Package memory provides a purely in-process domain.SignalBus so the
// WebSocket hub works without Redis configured.
package memory

import (
	"context"
	"sync"

	"github.com/openoutcry/pitbot/internal/domain"
)

// subBufferSize is the per-subscriber channel buffer; a full buffer drops
// the message rather than blocking the publisher.
const subBufferSize = 128

// Bus fans published payloads out to all subscribers of a channel.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan []byte
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]chan []byte)}
}

// Publish delivers the payload to every current subscriber of the channel.
// Slow subscribers miss messages instead of stalling the publisher.
func (b *Bus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber for the channel. The returned
// channel closes when the context is cancelled.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, subBufferSize)

	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()

		list := b.subs[channel]
		for i, c := range list {
			if c == ch {
				b.subs[channel] = append(list[:i], list[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

// Compile-time interface check.
var _ domain.SignalBus = (*Bus)(nil)
