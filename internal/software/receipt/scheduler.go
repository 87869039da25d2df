// Package receipt implements the async receipt-email pipeline: the API side
// schedules a durable task when a ride completes, and the worker side
// delivers it at-least-once with an idempotency ledger.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"caby/internal/general/contracts"
)

// Publisher is the slice of the message client the scheduler needs.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// Scheduler enqueues receipt tasks on the durable queue.
type Scheduler struct {
	publisher Publisher
	producer  string
}

// NewScheduler creates a scheduler publishing as the named producer.
func NewScheduler(publisher Publisher, producer string) *Scheduler {
	return &Scheduler{publisher: publisher, producer: producer}
}

// Schedule publishes a ReceiptTask for the ride. The broker confirm makes
// the enqueue durable before this returns.
func (s *Scheduler) Schedule(_ context.Context, rideID string, amount float64) error {
	task := contracts.ReceiptTask{
		RideID: rideID,
		Amount: amount,
		Envelope: contracts.Envelope{
			CorrelationID: uuid.NewString(),
			Producer:      s.producer,
			SentAt:        time.Now().UTC(),
		},
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal receipt task: %w", err)
	}

	if err := s.publisher.Publish(contracts.ExchangeRideTopic, contracts.RouteReceiptRequested, body); err != nil {
		return fmt.Errorf("publish receipt task: %w", err)
	}
	return nil
}
