package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"caby/internal/domain/ride"
	"caby/internal/ports"
)

// RideRepo persists rides using pgx and plain SQL.
type RideRepo struct{}

// NewRideRepo constructs a new RideRepo.
func NewRideRepo() ports.RideStore {
	return &RideRepo{}
}

const rideColumns = `
	id, rider_id, driver_id,
	pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
	fare_estimate, status, cancellation_reason,
	created_at, updated_at, accepted_at, completed_at, cancelled_at`

// CreateRide inserts a new ride row; the database assigns id and timestamps.
func (repo *RideRepo) CreateRide(ctx context.Context, rd *ride.Ride) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rides (
			rider_id, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			fare_estimate, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		rd.RiderID,
		rd.PickupLat,
		rd.PickupLng,
		rd.DropoffLat,
		rd.DropoffLng,
		rd.FareEstimate,
		rd.Status.String(), // always "SEARCHING" at creation
	).Scan(&rd.ID, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}

	return nil
}

// GetByID fetches a ride by primary key (uuid).
func (repo *RideRepo) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanRide(tx.QueryRow(ctx, `SELECT`+rideColumns+` FROM rides WHERE id = $1`, id))
}

// ApplyTransition locks the row, verifies the expected status, applies
// mutate in memory, and writes the mutable columns back. Concurrent callers
// serialize on the row lock; whoever sees a changed status loses with
// ride.ErrConflict.
func (repo *RideRepo) ApplyTransition(ctx context.Context, id string, expected ride.Status, mutate func(*ride.Ride) error) (*ride.Ride, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rd, err := scanRide(tx.QueryRow(ctx, `SELECT`+rideColumns+` FROM rides WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if rd.Status != expected {
		return nil, fmt.Errorf("%w: status is %s, expected %s", ride.ErrConflict, rd.Status, expected)
	}

	if err := mutate(rd); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE rides
		SET driver_id = $2, status = $3, cancellation_reason = $4,
		    updated_at = $5, accepted_at = $6, completed_at = $7, cancelled_at = $8
		WHERE id = $1
	`,
		rd.ID,
		rd.DriverID,
		rd.Status.String(),
		rd.CancellationReason,
		rd.UpdatedAt,
		rd.AcceptedAt,
		rd.CompletedAt,
		rd.CancelledAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update ride: %w", err)
	}

	return rd, nil
}

func scanRide(row pgx.Row) (*ride.Ride, error) {
	var rd ride.Ride
	var status string
	err := row.Scan(
		&rd.ID, &rd.RiderID, &rd.DriverID,
		&rd.PickupLat, &rd.PickupLng, &rd.DropoffLat, &rd.DropoffLng,
		&rd.FareEstimate, &status, &rd.CancellationReason,
		&rd.CreatedAt, &rd.UpdatedAt, &rd.AcceptedAt, &rd.CompletedAt, &rd.CancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ride.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ride: %w", err)
	}
	rd.Status = ride.Status(status)
	return &rd, nil
}
