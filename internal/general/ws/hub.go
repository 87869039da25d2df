// Package ws is the room-scoped broadcast layer. Each process keeps only its
// own live connections; emits go through the shared broker and every process
// re-delivers to the room members it holds locally.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"caby/internal/general/broker"
	"caby/internal/general/contracts"
	"caby/internal/general/logger"
)

var errPublishBufferFull = errors.New("publish buffer full")

// Hub tracks local room membership and relays emitted events through the
// broker. Join/leave are idempotent; delivery is at-most-once. Emits from
// this process reach the broker in emit order: one goroutine drains the
// publish buffer FIFO.
type Hub struct {
	logger *logger.Logger
	broker broker.Broker
	origin string // this process's id, for cross-process log correlation

	pubCh chan pubRequest

	mu    sync.RWMutex
	all   map[Session]struct{}            // every attached session
	rooms map[string]map[Session]struct{} // room key -> members
}

// pubRequest is one queued emit awaiting publication.
type pubRequest struct {
	ctx   context.Context // detached from the caller, keeps log correlation
	event string
	room  string
	body  []byte
}

func NewHub(logger *logger.Logger, b broker.Broker) *Hub {
	return &Hub{
		logger: logger,
		broker: b,
		origin: uuid.NewString(),
		pubCh:  make(chan pubRequest, 256),
		all:    make(map[Session]struct{}),
		rooms:  make(map[string]map[Session]struct{}),
	}
}

// Attach registers a connected session so broadcast-all events reach it.
func (h *Hub) Attach(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all[s] = struct{}{}
}

// Detach removes a session from every room and from the hub. Implicitly
// called on disconnect; safe to call twice.
func (h *Hub) Detach(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.all, s)
	for key, members := range h.rooms {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, key)
		}
	}
}

// Join subscribes a session to a room. Idempotent.
func (h *Hub) Join(s Session, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	if members == nil {
		members = make(map[Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
}

// Leave unsubscribes a session from a room. Idempotent.
func (h *Hub) Leave(s Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Emit relays an event through the broker; local members receive it via the
// same Run loop as members held by other processes. Fire-and-forget: the
// caller never waits on the broker. Sequential emits keep their order on
// the way to the broker; a full buffer drops the event with a log line.
func (h *Hub) Emit(ctx context.Context, event string, payload map[string]any, room string) {
	env := contracts.BroadcastEnvelope{
		Event:   event,
		Room:    room,
		Payload: payload,
		Origin:  h.origin,
		SentAt:  time.Now().UTC(),
	}
	body, err := json.Marshal(env)
	if err != nil {
		h.logger.Error(ctx, "broadcast_encode_failed", "Failed to encode broadcast envelope", err,
			map[string]any{"event": event, "room": room})
		return
	}

	req := pubRequest{
		ctx:   context.WithoutCancel(ctx),
		event: event,
		room:  room,
		body:  body,
	}
	select {
	case h.pubCh <- req:
	default:
		h.logger.Error(ctx, "broadcast_buffer_full", "Dropping broadcast, publish buffer is full",
			errPublishBufferFull, map[string]any{"event": event, "room": room})
	}
}

// publishLoop drains queued emits one at a time, which is what guarantees
// same-origin ordering to the broker.
func (h *Hub) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-h.pubCh:
			pubCtx, cancel := context.WithTimeout(req.ctx, 5*time.Second)
			if err := h.broker.Publish(pubCtx, contracts.BroadcastChannel, req.body); err != nil {
				h.logger.Error(pubCtx, "broadcast_publish_failed", "Failed to publish broadcast envelope", err,
					map[string]any{"event": req.event, "room": req.room})
			}
			cancel()
		}
	}
}

// Run subscribes to the broker channel and re-delivers envelopes to local
// members until ctx is cancelled. It also owns the publisher draining Emit's
// buffer.
func (h *Hub) Run(ctx context.Context) error {
	stream, err := h.broker.Subscribe(ctx, contracts.BroadcastChannel)
	if err != nil {
		return err
	}

	go h.publishLoop(ctx)

	h.logger.Info(ctx, "hub_started", "Broadcast hub subscribed to broker channel",
		map[string]any{"channel": contracts.BroadcastChannel, "origin": h.origin})

	for body := range stream {
		var env contracts.BroadcastEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			h.logger.Error(ctx, "broadcast_decode_failed", "Dropping malformed broadcast envelope", err,
				map[string]any{"size": len(body)})
			continue
		}
		h.deliver(ctx, env)
	}
	return nil
}

// deliver writes the envelope to the local target set. Membership is
// snapshotted under the read lock; the writes themselves happen outside it
// so one slow socket cannot stall joins.
func (h *Hub) deliver(ctx context.Context, env contracts.BroadcastEnvelope) {
	h.mu.RLock()
	var targets []Session
	if env.Room == "" {
		targets = make([]Session, 0, len(h.all))
		for s := range h.all {
			targets = append(targets, s)
		}
	} else {
		members := h.rooms[env.Room]
		targets = make([]Session, 0, len(members))
		for s := range members {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	msg := wireEvent{Event: env.Event, Room: env.Room, Payload: env.Payload}
	for _, s := range targets {
		if err := s.SendJSON(msg); err != nil {
			// dead connection; its read loop will detach it
			h.logger.Debug(ctx, "broadcast_send_failed", "Failed to deliver event to subscriber",
				map[string]any{"event": env.Event, "room": env.Room, "error": err.Error()})
		}
	}
}

// wireEvent is what subscribers actually receive.
type wireEvent struct {
	Event   string         `json:"event"`
	Room    string         `json:"room,omitempty"`
	Payload map[string]any `json:"payload"`
}
