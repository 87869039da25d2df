package receipt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger records which rides already had their receipt sent, so redelivered
// tasks become no-ops.
type Ledger interface {
	// Claim atomically marks the ride's receipt as sent and reports whether
	// this caller won the claim. False means another worker got there first;
	// the single winner performs the send.
	Claim(ctx context.Context, rideID string) (bool, error)
}

const (
	ledgerKeyPrefix = "caby:receipt:"
	ledgerTTL       = 30 * 24 * time.Hour
)

// RedisLedger keeps sent markers in Redis with a retention TTL. Claims go
// through SETNX, so dedupe holds across the whole worker fleet even when
// two replicas handle the same ride at the same moment.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) Claim(ctx context.Context, rideID string) (bool, error) {
	won, err := l.client.SetNX(ctx, ledgerKeyPrefix+rideID, "1", ledgerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("ledger claim: %w", err)
	}
	return won, nil
}

// MemoryLedger is a process-local ledger for single-worker deployments and
// tests.
type MemoryLedger struct {
	mu   sync.Mutex
	sent map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{sent: make(map[string]struct{})}
}

func (l *MemoryLedger) Claim(_ context.Context, rideID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sent[rideID]; ok {
		return false, nil
	}
	l.sent[rideID] = struct{}{}
	return true, nil
}
