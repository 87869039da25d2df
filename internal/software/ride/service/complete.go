package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caby/internal/domain/ride"
	"caby/internal/general/contracts"
)

const receiptScheduleTimeout = 10 * time.Second

// CompleteRide moves an ACCEPTED ride to COMPLETED and schedules the
// receipt email. Scheduling is detached from the request: the transition
// has already committed, so a broker hiccup must not fail the call.
func (service *rideService) CompleteRide(ctx context.Context, rideID string) (*ride.Ride, error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return nil, fmt.Errorf("%w: ride id is required", ride.ErrInvalidInput)
	}
	ctx = service.logger.WithRideID(ctx, rideID)

	var completed *ride.Ride
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		completed, err = service.rides.ApplyTransition(txCtx, rideID, ride.StatusAccepted, func(rd *ride.Ride) error {
			return rd.Complete()
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	service.hub.Emit(ctx, contracts.EventRideStatus, map[string]any{
		"status": completed.Status.String(),
	}, contracts.RideRoom(rideID))

	go func(amount float64) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptScheduleTimeout)
		defer cancel()
		if err := service.receipts.Schedule(sctx, rideID, amount); err != nil {
			service.logger.Error(sctx, "receipt_schedule_failed", "Failed to enqueue receipt email", err,
				map[string]any{"ride_id": rideID})
		}
	}(completed.FareEstimate)

	service.logger.Info(ctx, "ride_completed", "Ride completed", map[string]any{
		"ride_id": rideID,
		"fare":    completed.FareEstimate,
	})

	return completed, nil
}
