package service

import (
	"context"

	"caby/internal/ports"
)

// SimulatedMatcher stands in for a real dispatch system. It always returns
// the same demo driver, which keeps the accept path exercisable end to end
// in environments without a driver fleet.
type SimulatedMatcher struct {
	DriverID string
	Name     string
	Vehicle  string
	ETA      int
}

// NewSimulatedMatcher returns the demo matcher with its canned driver.
func NewSimulatedMatcher() *SimulatedMatcher {
	return &SimulatedMatcher{
		DriverID: "driver-99",
		Name:     "John Doe",
		Vehicle:  "Toyota Prius",
		ETA:      4,
	}
}

func (m *SimulatedMatcher) Match(_ context.Context, _ string) (ports.DriverMatch, error) {
	return ports.DriverMatch{
		DriverID:   m.DriverID,
		Label:      m.Name + " (" + m.Vehicle + ")",
		ETAMinutes: m.ETA,
	}, nil
}
