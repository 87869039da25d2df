package service

import (
	"context"
	"fmt"
	"strings"

	"caby/internal/domain/ride"
	"caby/internal/general/contracts"
)

// CancelRide moves a non-terminal ride to CANCELLED. The current status is
// read and re-verified inside one transaction, so a ride that gets accepted
// or completed mid-flight fails with ride.ErrConflict instead of being
// silently cancelled from a stale view.
func (service *rideService) CancelRide(ctx context.Context, rideID, reason string) (*ride.Ride, error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return nil, fmt.Errorf("%w: ride id is required", ride.ErrInvalidInput)
	}
	ctx = service.logger.WithRideID(ctx, rideID)

	var cancelled *ride.Ride
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := service.rides.GetByID(txCtx, rideID)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return fmt.Errorf("%w: ride is already %s", ride.ErrIllegalTransition, current.Status)
		}

		cancelled, err = service.rides.ApplyTransition(txCtx, rideID, current.Status, func(rd *ride.Ride) error {
			return rd.Cancel(reason)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	service.hub.Emit(ctx, contracts.EventRideStatus, map[string]any{
		"status": cancelled.Status.String(),
	}, contracts.RideRoom(rideID))

	service.logger.Info(ctx, "ride_cancelled", "Ride cancelled", map[string]any{
		"ride_id": rideID,
		"reason":  reason,
	})

	return cancelled, nil
}
