package contracts

import "time"

// BroadcastEnvelope is the wire format relayed through the broker channel.
// Room empty means "all connected subscribers"; otherwise only members of
// that room receive the event. Fire-and-forget: no acks, no replay.
type BroadcastEnvelope struct {
	Event   string         `json:"event"`
	Room    string         `json:"room,omitempty"`
	Payload map[string]any `json:"payload"`
	Origin  string         `json:"origin,omitempty"` // emitting process id
	SentAt  time.Time      `json:"sent_at"`
}

// ReceiptTask is published to QueueReceiptEmails when a ride completes.
// Consumption must be idempotent: the same ride id may be delivered twice.
type ReceiptTask struct {
	RideID string  `json:"ride_id"`
	Amount float64 `json:"amount"`
	Envelope
}
