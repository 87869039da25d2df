package receiptworker

import (
	"context"
	"os"

	"caby/internal/general/broker"
	"caby/internal/general/config"
	"caby/internal/general/logger"
	"caby/internal/general/rabbitmq"
	"caby/internal/software/receipt"
)

const serviceName = "receipt-worker"

// Run wires the receipt worker and blocks until ctx is cancelled.
func Run(ctx context.Context, configPath string, prefetch int) error {
	logger := logger.New(serviceName)
	ctx = logger.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	rmq, err := rabbitmq.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	// dedupe ledger: shared via Redis when configured, process-local otherwise
	var ledger receipt.Ledger
	if addr := cfg.RedisAddr(); addr != "" {
		redisBroker, err := broker.NewRedis(ctx, addr)
		if err != nil {
			logger.Error(ctx, "redis_connection_failed", "Failed to connect to Redis", err,
				map[string]any{"addr": addr})
			return err
		}
		defer redisBroker.Close()
		ledger = receipt.NewRedisLedger(redisBroker.Client())
		logger.Info(ctx, "ledger_selected", "Receipt dedupe ledger backed by Redis", map[string]any{"addr": addr})
	} else {
		ledger = receipt.NewMemoryLedger()
		logger.Info(ctx, "ledger_selected", "No Redis configured, receipt dedupe is process-local", nil)
	}

	hostname, _ := os.Hostname()
	worker := receipt.NewWorker(logger, rmq, ledger, serviceName+"@"+hostname, prefetch)

	if err := worker.Run(ctx); err != nil {
		logger.Error(ctx, "worker_error", "Receipt worker terminated with error", err, nil)
		return err
	}

	logger.Info(ctx, "shutdown_complete", "Receipt worker stopped", nil)
	return nil
}
