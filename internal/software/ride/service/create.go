package service

import (
	"context"

	"caby/internal/domain/ride"
	"caby/internal/general/contracts"
	"caby/internal/ports"
)

// CreateRide validates the request, persists a new SEARCHING ride in one
// transaction, and announces it to connected drivers. Creation is
// all-or-nothing: a failed transaction leaves no partial ride behind.
func (service *rideService) CreateRide(ctx context.Context, in ports.CreateRideInput) (ports.CreateRideResult, error) {
	var created *ride.Ride

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		// domain constructor performs field validation
		rd, err := ride.NewRide(in.RiderID, in.PickupLat, in.PickupLng, in.DropoffLat, in.DropoffLng, in.Fare)
		if err != nil {
			return err
		}

		if err := service.users.EnsureRider(txCtx, in.RiderID, in.RiderEmail); err != nil {
			return err
		}

		if err := service.rides.CreateRide(txCtx, rd); err != nil {
			return err
		}

		created = rd
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "ride_create_failed", "Failed to create ride", err,
			map[string]any{"rider_id": in.RiderID})
		return ports.CreateRideResult{}, err
	}

	ctx = service.logger.WithRideID(ctx, created.ID)

	// announce the new request to every connected subscriber (drivers)
	service.hub.Emit(ctx, contracts.EventNewRideRequest, map[string]any{
		"ride_id": created.ID,
	}, "")

	service.logger.Info(ctx, "ride_created", "Ride created and searching for a driver", map[string]any{
		"ride_id":  created.ID,
		"rider_id": created.RiderID,
		"fare":     created.FareEstimate,
	})

	return ports.CreateRideResult{
		RideID: created.ID,
		Status: created.Status.String(),
	}, nil
}
