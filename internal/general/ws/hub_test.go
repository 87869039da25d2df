package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"caby/internal/general/broker"
	"caby/internal/general/contracts"
	"caby/internal/general/logger"
)

// fakeSession records everything the hub delivers to it.
type fakeSession struct {
	mu   sync.Mutex
	msgs []wireEvent
}

func (s *fakeSession) SendJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := v.(wireEvent); ok {
		s.msgs = append(s.msgs, ev)
	}
	return nil
}

func (s *fakeSession) Close() error { return nil }

func (s *fakeSession) received() []wireEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wireEvent, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// waitFor polls until cond holds or the deadline passes. Broadcast delivery
// crosses the broker goroutine, so tests cannot assert immediately.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func newTestHub(t *testing.T) (*Hub, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(logger.New("test"), broker.NewLoopback())
	ready := make(chan struct{})
	go func() {
		close(ready)
		_ = h.Run(ctx)
	}()
	<-ready
	// Run subscribes before the first receive; give the loop a beat to start
	time.Sleep(10 * time.Millisecond)
	return h, ctx
}

func TestHub_RoomDelivery(t *testing.T) {
	h, ctx := newTestHub(t)

	member := &fakeSession{}
	outsider := &fakeSession{}
	h.Attach(member)
	h.Attach(outsider)

	room := contracts.RideRoom("ride-1")
	h.Join(member, room)

	h.Emit(ctx, contracts.EventRideStatus, map[string]any{"status": "ACCEPTED"}, room)

	waitFor(t, func() bool { return len(member.received()) == 1 })

	got := member.received()[0]
	if got.Event != contracts.EventRideStatus || got.Room != room {
		t.Errorf("delivered event = %+v", got)
	}
	if got.Payload["status"] != "ACCEPTED" {
		t.Errorf("payload = %v", got.Payload)
	}

	if n := len(outsider.received()); n != 0 {
		t.Errorf("non-member received %d events", n)
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	h, ctx := newTestHub(t)

	a := &fakeSession{}
	b := &fakeSession{}
	h.Attach(a)
	h.Attach(b)
	h.Join(a, contracts.RideRoom("ride-1")) // room membership must not matter

	h.Emit(ctx, contracts.EventNewRideRequest, map[string]any{"ride_id": "ride-1"}, "")

	waitFor(t, func() bool {
		return len(a.received()) == 1 && len(b.received()) == 1
	})
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h, ctx := newTestHub(t)

	s := &fakeSession{}
	h.Attach(s)

	room := contracts.RideRoom("ride-1")
	h.Join(s, room)
	h.Join(s, room)
	h.Join(s, room)

	h.Emit(ctx, contracts.EventRideStatus, map[string]any{"status": "COMPLETED"}, room)

	waitFor(t, func() bool { return len(s.received()) >= 1 })
	time.Sleep(50 * time.Millisecond)
	if n := len(s.received()); n != 1 {
		t.Errorf("joined session received %d copies, want exactly 1", n)
	}
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	h, ctx := newTestHub(t)

	s := &fakeSession{}
	watcher := &fakeSession{}
	h.Attach(s)
	h.Attach(watcher)

	room := contracts.RideRoom("ride-1")
	h.Join(s, room)
	h.Join(watcher, room)
	h.Leave(s, room)

	h.Emit(ctx, contracts.EventRideStatus, map[string]any{"status": "CANCELLED"}, room)

	// watcher confirms the emit landed; s must have seen nothing
	waitFor(t, func() bool { return len(watcher.received()) == 1 })
	if n := len(s.received()); n != 0 {
		t.Errorf("left session received %d events", n)
	}
}

// orderedBroker records the arrival order of publishes.
type orderedBroker struct {
	mu        sync.Mutex
	published [][]byte
}

func (b *orderedBroker) Publish(_ context.Context, _ string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dup := make([]byte, len(payload))
	copy(dup, payload)
	b.published = append(b.published, dup)
	return nil
}

func (b *orderedBroker) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (b *orderedBroker) arrived() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.published))
	copy(out, b.published)
	return out
}

func TestHub_SequentialEmitsReachBrokerInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := &orderedBroker{}
	h := NewHub(logger.New("test"), b)
	go func() { _ = h.Run(ctx) }()

	// a ride's status events must arrive in the order they were emitted
	const n = 50
	room := contracts.RideRoom("ride-1")
	for i := 0; i < n; i++ {
		h.Emit(ctx, contracts.EventRideStatus, map[string]any{"seq": i}, room)
	}

	waitFor(t, func() bool { return len(b.arrived()) == n })

	for i, body := range b.arrived() {
		var env contracts.BroadcastEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			t.Fatalf("unmarshal envelope %d: %v", i, err)
		}
		seq, ok := env.Payload["seq"].(float64)
		if !ok || int(seq) != i {
			t.Fatalf("position %d carries seq %v, emit order not preserved", i, env.Payload["seq"])
		}
	}
}

func TestHub_DetachRemovesFromAllRooms(t *testing.T) {
	h, ctx := newTestHub(t)

	s := &fakeSession{}
	h.Attach(s)
	h.Join(s, contracts.RideRoom("ride-1"))
	h.Join(s, contracts.RideRoom("ride-2"))
	h.Detach(s)
	h.Detach(s) // safe to call twice

	h.Emit(ctx, contracts.EventRideStatus, map[string]any{"status": "ACCEPTED"}, contracts.RideRoom("ride-1"))
	h.Emit(ctx, contracts.EventNewRideRequest, map[string]any{"ride_id": "ride-3"}, "")

	time.Sleep(100 * time.Millisecond)
	if n := len(s.received()); n != 0 {
		t.Errorf("detached session received %d events", n)
	}
}
