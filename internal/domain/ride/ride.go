package ride

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Ride is the domain entity corresponding to the `rides` table.
type Ride struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Actors
	RiderID  string
	DriverID *string // nil until accepted; immutable once set

	// Trip
	PickupLat  float64
	PickupLng  float64
	DropoffLat float64
	DropoffLng float64

	// Core state
	Status       Status
	FareEstimate float64 // set at creation, never mutated

	// Lifecycle timestamps
	AcceptedAt  *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	CancellationReason *string
}

// NewRide creates a new ride in SEARCHING state.
func NewRide(riderID string, pickupLat, pickupLng, dropoffLat, dropoffLng, fareEstimate float64) (*Ride, error) {
	if riderID = strings.TrimSpace(riderID); riderID == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, ErrRiderRequired)
	}
	for _, c := range []struct {
		lat, lng float64
	}{
		{pickupLat, pickupLng},
		{dropoffLat, dropoffLng},
	} {
		if !validCoordinate(c.lat, c.lng) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, ErrCoordinateBounds)
		}
	}
	if fareEstimate < 0 || math.IsNaN(fareEstimate) || math.IsInf(fareEstimate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, ErrFareOutOfRange)
	}

	now := time.Now().UTC()
	return &Ride{
		CreatedAt:    now,
		UpdatedAt:    now,
		RiderID:      riderID,
		PickupLat:    pickupLat,
		PickupLng:    pickupLng,
		DropoffLat:   dropoffLat,
		DropoffLng:   dropoffLng,
		Status:       StatusSearching,
		FareEstimate: fareEstimate,
	}, nil
}

// AssignDriver sets the driver and moves SEARCHING -> ACCEPTED.
func (ride *Ride) AssignDriver(driverID string) error {
	if strings.TrimSpace(driverID) == "" {
		return ErrDriverRequired
	}
	if ride.DriverID != nil && *ride.DriverID != "" {
		return fmt.Errorf("%w: %v", ErrIllegalTransition, ErrAlreadyAssigned)
	}
	if !ride.Status.CanTransitionTo(StatusAccepted) {
		return ErrIllegalTransition
	}

	ride.DriverID = &driverID
	now := time.Now().UTC()
	ride.AcceptedAt = &now
	ride.setStatus(StatusAccepted)
	return nil
}

// Complete transitions ACCEPTED -> COMPLETED.
func (ride *Ride) Complete() error {
	if !ride.Status.CanTransitionTo(StatusCompleted) {
		return ErrIllegalTransition
	}
	now := time.Now().UTC()
	ride.CompletedAt = &now
	ride.setStatus(StatusCompleted)
	return nil
}

// Cancel transitions any non-terminal state to CANCELLED.
func (ride *Ride) Cancel(reason string) error {
	if !ride.Status.CanTransitionTo(StatusCancelled) {
		return ErrIllegalTransition
	}
	now := time.Now().UTC()
	ride.CancelledAt = &now
	if rs := strings.TrimSpace(reason); rs != "" {
		ride.CancellationReason = &rs
	}
	ride.setStatus(StatusCancelled)
	return nil
}

func validCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ----- internal helpers -----

func (ride *Ride) setStatus(status Status) {
	ride.Status = status
	ride.UpdatedAt = time.Now().UTC()
}
