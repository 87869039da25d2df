package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"caby/internal/general/contracts"
	"caby/internal/general/logger"
	"caby/internal/general/rabbitmq"
)

// Worker consumes the receipt queue and sends one email per completed ride.
// Delivery from the broker is at-least-once; the ledger makes the send
// effectively once.
type Worker struct {
	logger *logger.Logger
	client *rabbitmq.Client
	ledger Ledger

	consumerTag string
	prefetch    int
}

// NewWorker creates a worker consuming with the given tag and prefetch.
func NewWorker(log *logger.Logger, client *rabbitmq.Client, ledger Ledger, consumerTag string, prefetch int) *Worker {
	if prefetch <= 0 {
		prefetch = 8
	}
	return &Worker{
		logger:      log,
		client:      client,
		ledger:      ledger,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// Run blocks consuming the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info(ctx, "receipt_worker_started", "Consuming receipt email queue", map[string]any{
		"queue":    contracts.QueueReceiptEmails,
		"prefetch": w.prefetch,
	})
	return w.client.Consume(ctx, contracts.QueueReceiptEmails, w.consumerTag, w.prefetch, true, w.handle)
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) error {
	var task contracts.ReceiptTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		// malformed payload will never parse on redelivery either; log and
		// ack it away
		w.logger.Error(ctx, "receipt_task_malformed", "Dropping unparseable receipt task", err, nil)
		return nil
	}
	if strings.TrimSpace(task.RideID) == "" {
		w.logger.Error(ctx, "receipt_task_malformed", "Dropping receipt task without ride id", fmt.Errorf("empty ride_id"), nil)
		return nil
	}

	ctx = w.logger.WithRideID(ctx, task.RideID)
	if task.CorrelationID != "" {
		ctx = w.logger.WithRequestID(ctx, task.CorrelationID)
	}

	// claim before send: SETNX-style, so two workers holding the same ride
	// agree on a single sender
	claimed, err := w.ledger.Claim(ctx, task.RideID)
	if err != nil {
		return err // nack + requeue, ledger may recover
	}
	if !claimed {
		w.logger.Info(ctx, "receipt_duplicate_skipped", "Receipt already sent for ride", map[string]any{
			"ride_id":     task.RideID,
			"redelivered": d.Redelivered,
		})
		return nil
	}

	return w.send(ctx, task)
}

// send performs the actual delivery. There is no SMTP relay in this
// deployment, so the send is the structured log line downstream tooling
// tails.
func (w *Worker) send(ctx context.Context, task contracts.ReceiptTask) error {
	w.logger.Info(ctx, "receipt_email_sent", "Receipt email sent for completed ride", map[string]any{
		"ride_id": task.RideID,
		"amount":  task.Amount,
	})
	return nil
}
