package ports

import (
	"context"

	"caby/internal/domain/ride"
)

// UnitOfWork runs fn inside a single storage transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RideStore is the durable record of rides. ApplyTransition is the only
// mutation entry point after creation.
type RideStore interface {
	// CreateRide persists a new ride and assigns its id.
	CreateRide(ctx context.Context, r *ride.Ride) error

	// GetByID fetches a ride or returns ride.ErrNotFound.
	GetByID(ctx context.Context, id string) (*ride.Ride, error)

	// ApplyTransition atomically verifies the ride is still in expected
	// status, applies mutate, and persists the result. A status mismatch
	// returns ride.ErrConflict and leaves the row untouched; errors from
	// mutate (e.g. ride.ErrIllegalTransition) roll the change back.
	ApplyTransition(ctx context.Context, id string, expected ride.Status, mutate func(*ride.Ride) error) (*ride.Ride, error)
}

// UserStore persists the minimal account records rides reference.
type UserStore interface {
	// EnsureRider creates the rider row if it does not exist yet.
	EnsureRider(ctx context.Context, riderID, email string) error
}
