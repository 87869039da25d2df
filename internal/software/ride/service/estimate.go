package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"caby/internal/domain/ride"
	"caby/internal/ports"
	"caby/internal/routing"
)

// Documented fallback measurements used when the routing provider is
// unreachable: 5.5 km, 15 minutes.
const (
	FallbackDistanceMeters  = 5500.0
	FallbackDurationSeconds = 900.0

	SourceProvider = "provider"
	SourceFallback = "fallback"
)

// EstimateFare measures the route and prices it. "No route" surfaces to the
// caller; a provider outage degrades to the fixed fallback pair, which is
// marked in the result and logged so it is never mistaken for a measurement.
func (service *rideService) EstimateFare(ctx context.Context, origin, dest string) (ports.FareEstimate, error) {
	origin = strings.TrimSpace(origin)
	dest = strings.TrimSpace(dest)
	if origin == "" || dest == "" {
		return ports.FareEstimate{}, fmt.Errorf("%w: origin and dest are required", ride.ErrInvalidInput)
	}

	source := SourceProvider
	route, err := service.routes.Estimate(ctx, origin, dest)
	switch {
	case err == nil:
		// measured

	case errors.Is(err, routing.ErrNoRoute):
		service.logger.Info(ctx, "route_not_found", "Routing provider found no path",
			map[string]any{"origin": origin, "dest": dest})
		return ports.FareEstimate{}, err

	default:
		// outage or timeout: fall back, loudly
		service.logger.Error(ctx, "route_fallback_used", "Routing provider unavailable, using fallback measurements", err,
			map[string]any{
				"origin":           origin,
				"dest":             dest,
				"distance_meters":  FallbackDistanceMeters,
				"duration_seconds": FallbackDurationSeconds,
			})
		route = ports.RouteEstimate{
			DistanceMeters:  FallbackDistanceMeters,
			DurationSeconds: FallbackDurationSeconds,
		}
		source = SourceFallback
	}

	price, err := service.pricing.Estimate(route.DistanceMeters, route.DurationSeconds)
	if err != nil {
		return ports.FareEstimate{}, err
	}

	return ports.FareEstimate{
		Price:       price,
		DistanceKM:  math.Round(route.DistanceMeters/1000*10) / 10,
		DurationMin: int(math.Round(route.DurationSeconds / 60)),
		Source:      source,
	}, nil
}
