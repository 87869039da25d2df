package ports

import (
	"context"

	"caby/internal/domain/ride"
)

// ----- service DTOs -----

type CreateRideInput struct {
	RiderID    string
	RiderEmail string
	PickupLat  float64
	PickupLng  float64
	DropoffLat float64
	DropoffLng float64
	Fare       float64
}

type CreateRideResult struct {
	RideID string `json:"ride_id"`
	Status string `json:"status"`
}

type FareEstimate struct {
	Price       float64 `json:"price"`
	DistanceKM  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
	Source      string  `json:"source"` // "provider" | "fallback"
}

type CheckoutInput struct {
	Amount     float64
	Currency   string
	RiderEmail string
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
}

// RouteEstimate is what the routing provider measured for a trip.
type RouteEstimate struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// DriverMatch identifies the driver selected for a ride.
type DriverMatch struct {
	DriverID   string
	Label      string // display name, e.g. "John Doe (Toyota Prius)"
	ETAMinutes int
}

// ----- service & collaborator ports -----

// RideService orchestrates the ride lifecycle.
type RideService interface {
	CreateRide(ctx context.Context, in CreateRideInput) (CreateRideResult, error)
	EstimateFare(ctx context.Context, origin, dest string) (FareEstimate, error)
	AcceptRide(ctx context.Context, rideID string) (*ride.Ride, error)
	CompleteRide(ctx context.Context, rideID string) (*ride.Ride, error)
	CancelRide(ctx context.Context, rideID, reason string) (*ride.Ride, error)
	CreateCheckout(ctx context.Context, in CheckoutInput) (CheckoutResult, error)
}

// RouteProvider measures distance and duration between two places.
// Returns routing.ErrNoRoute when no path exists and routing.ErrUnavailable
// when the provider cannot be reached.
type RouteProvider interface {
	Estimate(ctx context.Context, origin, dest string) (RouteEstimate, error)
}

// DriverMatcher selects a driver for a ride. Kept separate from the state
// machine so matching policy can change without touching transitions.
type DriverMatcher interface {
	Match(ctx context.Context, rideID string) (DriverMatch, error)
}

// PaymentProvider creates a hosted checkout session and returns its URL.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error)
}

// ReceiptScheduler enqueues a receipt notification for async delivery.
type ReceiptScheduler interface {
	Schedule(ctx context.Context, rideID string, amount float64) error
}

// Broadcaster fans an event out to subscribers. An empty room targets all
// connected subscribers. Delivery is best-effort and at-most-once.
type Broadcaster interface {
	Emit(ctx context.Context, event string, payload map[string]any, room string)
}
