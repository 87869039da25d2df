package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"caby/internal/general/contracts"
)

type capturedPublish struct {
	Exchange   string
	RoutingKey string
	Body       []byte
}

type fakePublisher struct {
	published []capturedPublish
	err       error
}

func (p *fakePublisher) Publish(exchange, routingKey string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, capturedPublish{exchange, routingKey, body})
	return nil
}

func TestScheduler_Schedule(t *testing.T) {
	pub := &fakePublisher{}
	s := NewScheduler(pub, "api-service")

	if err := s.Schedule(context.Background(), "ride-1", 11.75); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	got := pub.published[0]
	if got.Exchange != contracts.ExchangeRideTopic || got.RoutingKey != contracts.RouteReceiptRequested {
		t.Errorf("routed to %s/%s", got.Exchange, got.RoutingKey)
	}

	var task contracts.ReceiptTask
	if err := json.Unmarshal(got.Body, &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if task.RideID != "ride-1" || task.Amount != 11.75 {
		t.Errorf("task = %+v", task)
	}
	if task.Producer != "api-service" || task.CorrelationID == "" || task.SentAt.IsZero() {
		t.Errorf("envelope = %+v", task.Envelope)
	}
}

func TestScheduler_SchedulePropagatesPublishFailure(t *testing.T) {
	wantErr := errors.New("broker down")
	s := NewScheduler(&fakePublisher{err: wantErr}, "api-service")

	if err := s.Schedule(context.Background(), "ride-1", 11.75); !errors.Is(err, wantErr) {
		t.Errorf("Schedule() error = %v, want wrapping %v", err, wantErr)
	}
}
