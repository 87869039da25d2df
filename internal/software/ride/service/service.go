package service

import (
	"caby/internal/general/logger"
	"caby/internal/ports"
	"caby/internal/pricing"
)

// rideService composes the store, lifecycle, hub, and external
// collaborators behind ports.RideService.
type rideService struct {
	logger   *logger.Logger
	uow      ports.UnitOfWork
	rides    ports.RideStore
	users    ports.UserStore
	pricing  *pricing.Engine
	routes   ports.RouteProvider
	matcher  ports.DriverMatcher
	payments ports.PaymentProvider
	receipts ports.ReceiptScheduler
	hub      ports.Broadcaster
}

// NewRideService creates the orchestrator with all dependencies injected.
func NewRideService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rides ports.RideStore,
	users ports.UserStore,
	engine *pricing.Engine,
	routes ports.RouteProvider,
	matcher ports.DriverMatcher,
	payments ports.PaymentProvider,
	receipts ports.ReceiptScheduler,
	hub ports.Broadcaster,
) ports.RideService {
	return &rideService{
		logger:   logger,
		uow:      uow,
		rides:    rides,
		users:    users,
		pricing:  engine,
		routes:   routes,
		matcher:  matcher,
		payments: payments,
		receipts: receipts,
		hub:      hub,
	}
}
