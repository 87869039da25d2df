package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"caby/internal/general/contracts"
	"caby/internal/general/logger"
)

func newTestWorker(ledger Ledger) *Worker {
	return NewWorker(logger.New("test"), nil, ledger, "test-consumer", 1)
}

func deliveryFor(t *testing.T, task contracts.ReceiptTask) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}
	return amqp.Delivery{Body: body}
}

func TestWorker_HandleSendsOnce(t *testing.T) {
	ledger := NewMemoryLedger()
	w := newTestWorker(ledger)
	ctx := context.Background()

	task := contracts.ReceiptTask{RideID: "ride-1", Amount: 11.75}

	if err := w.handle(ctx, deliveryFor(t, task)); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	// handling claims the ride; nobody else can claim it afterwards
	claimed, err := ledger.Claim(ctx, "ride-1")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if claimed {
		t.Fatal("ride must stay claimed after handling")
	}
}

func TestWorker_HandleRedeliveryIsNoop(t *testing.T) {
	ledger := NewMemoryLedger()
	w := newTestWorker(ledger)
	ctx := context.Background()

	task := contracts.ReceiptTask{RideID: "ride-1", Amount: 11.75}

	if err := w.handle(ctx, deliveryFor(t, task)); err != nil {
		t.Fatalf("first handle() error = %v", err)
	}

	// at-least-once delivery: the same task arrives again
	redelivered := deliveryFor(t, task)
	redelivered.Redelivered = true
	if err := w.handle(ctx, redelivered); err != nil {
		t.Fatalf("redelivered handle() error = %v", err)
	}
}

func TestWorker_HandleDropsMalformedPayload(t *testing.T) {
	w := newTestWorker(NewMemoryLedger())
	ctx := context.Background()

	// nil error means ack: a payload that can never parse must not requeue
	if err := w.handle(ctx, amqp.Delivery{Body: []byte("{nope")}); err != nil {
		t.Errorf("handle() on garbage error = %v, want nil (ack)", err)
	}
	if err := w.handle(ctx, deliveryFor(t, contracts.ReceiptTask{RideID: "  "})); err != nil {
		t.Errorf("handle() on empty ride id error = %v, want nil (ack)", err)
	}
}

// failingLedger simulates a ledger outage.
type failingLedger struct{}

func (failingLedger) Claim(context.Context, string) (bool, error) {
	return false, errors.New("ledger down")
}

func TestWorker_HandleRequeuesOnLedgerFailure(t *testing.T) {
	w := newTestWorker(failingLedger{})
	ctx := context.Background()

	err := w.handle(ctx, deliveryFor(t, contracts.ReceiptTask{RideID: "ride-1", Amount: 11.75}))
	if err == nil {
		t.Fatal("handle() must fail when the ledger is unreachable, so the task requeues")
	}

	// the outage may outlast the first redelivery; later attempts must keep
	// failing so the broker keeps the task alive until the ledger recovers
	redelivered := deliveryFor(t, contracts.ReceiptTask{RideID: "ride-1", Amount: 11.75})
	redelivered.Redelivered = true
	if err := w.handle(ctx, redelivered); err == nil {
		t.Fatal("redelivered handle() must still fail while the ledger is down")
	}
}

func TestMemoryLedger_ClaimOnce(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	claimed, err := ledger.Claim(ctx, "ride-1")
	if err != nil || !claimed {
		t.Fatalf("first claim: claimed=%v err=%v", claimed, err)
	}

	claimed, err = ledger.Claim(ctx, "ride-1")
	if err != nil || claimed {
		t.Fatalf("second claim: claimed=%v err=%v", claimed, err)
	}

	// other rides unaffected
	claimed, _ = ledger.Claim(ctx, "ride-2")
	if !claimed {
		t.Fatal("unrelated ride already claimed")
	}
}

func TestMemoryLedger_ConcurrentClaimSingleWinner(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	// two workers racing on the same ride must agree on exactly one sender
	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := ledger.Claim(ctx, "ride-1")
			if err != nil {
				t.Errorf("Claim() error = %v", err)
				return
			}
			if claimed {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	if n := len(wins); n != 1 {
		t.Fatalf("%d claim winners, want exactly 1", n)
	}
}
