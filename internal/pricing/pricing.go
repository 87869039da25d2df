// Package pricing turns measured trip distance and duration into a fare
// estimate. Pure computation, no I/O.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("distance and duration must be non-negative finite numbers")

// Rates are the configurable fare constants, in the service currency.
type Rates struct {
	BaseFare  float64
	PerKM     float64
	PerMinute float64
}

// DefaultRates: $2.50 base + $1.00/km + $0.25/min.
var DefaultRates = Rates{BaseFare: 2.50, PerKM: 1.00, PerMinute: 0.25}

type Engine struct {
	rates Rates
}

func NewEngine(rates Rates) *Engine {
	return &Engine{rates: rates}
}

// Estimate computes base + distance_km*per_km + duration_min*per_minute,
// rounded half-up to cents. Deterministic and monotonically non-decreasing
// in both arguments.
func (e *Engine) Estimate(distanceMeters, durationSeconds float64) (float64, error) {
	if !validMagnitude(distanceMeters) || !validMagnitude(durationSeconds) {
		return 0, fmt.Errorf("%w: got distance=%v duration=%v", ErrInvalidInput, distanceMeters, durationSeconds)
	}

	fare := e.rates.BaseFare +
		(distanceMeters/1000.0)*e.rates.PerKM +
		(durationSeconds/60.0)*e.rates.PerMinute

	return RoundCents(fare), nil
}

// RoundCents rounds a non-negative amount to 2 decimal places, half-up.
func RoundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func validMagnitude(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
