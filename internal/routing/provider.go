// Package routing measures trip distance and duration via an external
// geodata provider.
package routing

import (
	"context"
	"errors"
	"fmt"

	"caby/internal/ports"
)

var (
	// ErrNoRoute means the provider answered but found no path between the
	// two places. User-facing; distinct from an outage.
	ErrNoRoute = errors.New("no route found")

	// ErrUnavailable means the provider could not be reached or timed out.
	// The orchestrator recovers with documented fallback measurements.
	ErrUnavailable = errors.New("routing provider unavailable")
)

// Unconfigured is the provider used when no API credential is present. It
// always reports ErrUnavailable so the orchestrator's fallback path engages
// explicitly instead of fabricating measurements here.
type Unconfigured struct{}

func (Unconfigured) Estimate(context.Context, string, string) (ports.RouteEstimate, error) {
	return ports.RouteEstimate{}, fmt.Errorf("%w: no maps api key configured", ErrUnavailable)
}
