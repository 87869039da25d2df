package service

import (
	"context"
	"fmt"
	"strings"

	"caby/internal/domain/ride"
	"caby/internal/general/contracts"
)

// AcceptRide matches a driver and claims the ride for them. The claim is a
// compare-and-set on SEARCHING: when several drivers race, exactly one
// transition commits and the rest observe ride.ErrConflict.
func (service *rideService) AcceptRide(ctx context.Context, rideID string) (*ride.Ride, error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return nil, fmt.Errorf("%w: ride id is required", ride.ErrInvalidInput)
	}
	ctx = service.logger.WithRideID(ctx, rideID)

	// matching happens before the claim so a slow matcher never holds a
	// row lock
	match, err := service.matcher.Match(ctx, rideID)
	if err != nil {
		return nil, fmt.Errorf("match driver: %w", err)
	}

	var accepted *ride.Ride
	err = service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		accepted, err = service.rides.ApplyTransition(txCtx, rideID, ride.StatusSearching, func(rd *ride.Ride) error {
			return rd.AssignDriver(match.DriverID)
		})
		return err
	})
	if err != nil {
		service.logger.Info(ctx, "ride_accept_rejected", "Ride could not be accepted",
			map[string]any{"ride_id": rideID, "driver_id": match.DriverID, "reason": err.Error()})
		return nil, err
	}

	service.hub.Emit(ctx, contracts.EventRideStatus, map[string]any{
		"status":   accepted.Status.String(),
		"driver":   match.Label,
		"eta_mins": match.ETAMinutes,
	}, contracts.RideRoom(rideID))

	service.logger.Info(ctx, "ride_accepted", "Driver assigned to ride", map[string]any{
		"ride_id":   rideID,
		"driver_id": match.DriverID,
		"eta_mins":  match.ETAMinutes,
	})

	return accepted, nil
}
