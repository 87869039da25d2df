package routing

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"caby/internal/ports"
)

const requestTimeout = 4 * time.Second

// GoogleProvider measures routes with the Google Maps distance matrix.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider with the given API key.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// Estimate returns driving distance and duration between origin and dest.
func (p *GoogleProvider) Estimate(ctx context.Context, origin, dest string) (ports.RouteEstimate, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := p.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{dest},
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return ports.RouteEstimate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return ports.RouteEstimate{}, ErrNoRoute
	}

	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" {
		// ZERO_RESULTS, NOT_FOUND and friends: the provider is healthy,
		// there is just no path
		return ports.RouteEstimate{}, fmt.Errorf("%w: element status %s", ErrNoRoute, elem.Status)
	}

	return ports.RouteEstimate{
		DistanceMeters:  float64(elem.Distance.Meters),
		DurationSeconds: elem.Duration.Seconds(),
	}, nil
}
