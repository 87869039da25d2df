package ride

import "errors"

var (
	// ErrInvalidInput marks user-correctable request data problems.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a ride id is unknown.
	ErrNotFound = errors.New("ride not found")

	// ErrConflict is returned when a concurrent caller won the race for the
	// same transition. The caller must re-fetch current state, not retry.
	ErrConflict = errors.New("ride was modified concurrently")

	// ErrIllegalTransition is returned when a transition precondition does
	// not hold; the ride is left unmodified.
	ErrIllegalTransition = errors.New("illegal ride status transition")

	ErrRiderRequired    = errors.New("rider id is required")
	ErrDriverRequired   = errors.New("driver id is required")
	ErrAlreadyAssigned  = errors.New("driver already assigned")
	ErrFareOutOfRange   = errors.New("fare estimate must be a non-negative finite number")
	ErrCoordinateBounds = errors.New("coordinate out of range")
)
