package apiservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"caby/internal/general/broker"
	"caby/internal/general/config"
	"caby/internal/general/logger"
	"caby/internal/general/postgres"
	"caby/internal/general/rabbitmq"
	"caby/internal/general/ws"
	"caby/internal/payments"
	"caby/internal/ports"
	"caby/internal/pricing"
	"caby/internal/routing"
	"caby/internal/software/receipt"
	"caby/internal/software/ride/handler"
	"caby/internal/software/ride/service"
)

const serviceName = "api-service"

// Run wires the API service and blocks until ctx is cancelled.
func Run(ctx context.Context, configPath string, maxConcurrent int) error {
	// static request ID so startup logs correlate
	logger := logger.New(serviceName)
	ctx = logger.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	// Postgres pool + schema
	pool, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, logger); err != nil {
		logger.Error(ctx, "db_migrate_failed", "Failed to apply database schema", err, nil)
		return err
	}

	// RabbitMQ for the receipt queue
	rmq, err := rabbitmq.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()
	pub := rabbitmq.NewMQPublisher(rmq)

	// broadcast broker: Redis when configured, in-process loopback otherwise
	var hubBroker broker.Broker
	if addr := cfg.RedisAddr(); addr != "" {
		redisBroker, err := broker.NewRedis(ctx, addr)
		if err != nil {
			logger.Error(ctx, "redis_connection_failed", "Failed to connect to Redis broker", err,
				map[string]any{"addr": addr})
			return err
		}
		defer redisBroker.Close()
		hubBroker = redisBroker
		logger.Info(ctx, "broker_selected", "Broadcast relays through Redis pub/sub", map[string]any{"addr": addr})
	} else {
		hubBroker = broker.NewLoopback()
		logger.Info(ctx, "broker_selected", "No Redis configured, broadcast stays in-process", nil)
	}

	hub := ws.NewHub(logger, hubBroker)
	hubErr := make(chan error, 1)
	go func() { hubErr <- hub.Run(ctx) }()

	// routing provider: Google when a key is configured
	var routes ports.RouteProvider
	if cfg.Maps.APIKey != "" {
		routes, err = routing.NewGoogleProvider(cfg.Maps.APIKey)
		if err != nil {
			logger.Error(ctx, "maps_client_failed", "Failed to create Maps client", err, nil)
			return err
		}
		logger.Info(ctx, "routing_provider_selected", "Routing via Google Maps distance matrix", nil)
	} else {
		routes = routing.Unconfigured{}
		logger.Info(ctx, "routing_provider_selected", "No Maps key configured, estimates use the fallback route", nil)
	}

	// repos and collaborators
	uow := postgres.NewUnitOfWork(pool)
	rideRepo := postgres.NewRideRepo()
	userRepo := postgres.NewUserRepo()
	engine := pricing.NewEngine(pricing.DefaultRates)
	matcher := service.NewSimulatedMatcher()
	stripe := payments.NewStripeProvider(cfg.Stripe.APIKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	scheduler := receipt.NewScheduler(pub, serviceName)

	svc := service.NewRideService(logger, uow, rideRepo, userRepo, engine, routes, matcher, stripe, scheduler, hub)

	// HTTP surface. Only the request/response endpoints go behind the
	// concurrency limiter; a WebSocket holds its connection for the whole
	// subscription, so routing it through the semaphore would pin a slot
	// per subscriber and starve the API.
	apiMux := http.NewServeMux()
	httpHandler := handler.NewRideHTTPHandler(svc, logger)
	httpHandler.RegisterRoutes(apiMux)

	wsHandler := ws.NewHandler(logger, hub, cfg.HTTP.AllowedOrigins)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", wsHandler.Connect)
	mux.Handle("/", handler.ConcurrencyLimitMiddleware(maxConcurrent)(apiMux))

	root := handler.CORSMiddleware(cfg.HTTP.AllowedOrigins)(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	// WebSocket connections outlive WriteTimeout; gorilla manages its own
	// deadlines after the hijack, so the server timeouts only govern the
	// plain HTTP endpoints.

	logger.Info(ctx, "service_started",
		fmt.Sprintf("API service started on port %d", cfg.HTTP.Port),
		map[string]any{"port": cfg.HTTP.Port, "max_concurrent": maxConcurrent},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "shutdown_started", "Shutting down API service", nil)
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}

	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err,
				map[string]any{"port": cfg.HTTP.Port})
			return err
		}
		return nil

	case err := <-hubErr:
		if err != nil {
			logger.Error(ctx, "hub_error", "Broadcast hub terminated with error", err, nil)
			return err
		}
	}

	return nil
}
