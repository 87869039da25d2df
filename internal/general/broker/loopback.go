package broker

import (
	"context"
	"sync"
)

// Loopback is an in-process Broker for single-process deployments and tests.
// It keeps the same at-most-once semantics: a subscriber whose buffer is
// full simply misses the message.
type Loopback struct {
	mu   sync.RWMutex
	subs map[string][]chan []byte
}

func NewLoopback() *Loopback {
	return &Loopback{subs: make(map[string][]chan []byte)}
}

func (b *Loopback) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[channel] {
		// copy so subscribers never share the caller's backing array
		dup := make([]byte, len(payload))
		copy(dup, payload)
		select {
		case sub <- dup:
		default: // slow subscriber, drop
		}
	}
	return nil
}

func (b *Loopback) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 64)

	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		subs := b.subs[channel]
		for i, sub := range subs {
			if sub == ch {
				b.subs[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
