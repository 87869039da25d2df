// Package broker is the shared publish/subscribe medium the broadcast hub
// relays events through, so subscribers on different processes see the same
// stream. Delivery is best-effort: no acks, no persistence, no replay.
package broker

import "context"

type Broker interface {
	// Publish sends payload to every current subscriber of channel.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe returns a stream of payloads published to channel. The
	// stream closes when ctx is cancelled. Slow consumers may miss
	// messages; that is acceptable for fire-and-forget fan-out.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
