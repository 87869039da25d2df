package ride

import (
	"errors"
	"math"
	"testing"
)

func newTestRide(t *testing.T) *Ride {
	t.Helper()
	r, err := NewRide("rider-1", 40.7, -74.0, 40.8, -73.9, 11.75)
	if err != nil {
		t.Fatalf("NewRide() error = %v", err)
	}
	return r
}

func TestNewRide(t *testing.T) {
	r := newTestRide(t)

	if r.Status != StatusSearching {
		t.Errorf("new ride status = %s, want SEARCHING", r.Status)
	}
	if r.DriverID != nil {
		t.Error("new ride must have no driver")
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Error("timestamps must be set")
	}
}

func TestNewRide_Validation(t *testing.T) {
	tests := []struct {
		name    string
		riderID string
		lat     float64
		lng     float64
		fare    float64
	}{
		{name: "empty rider", riderID: "  ", lat: 40.7, lng: -74.0, fare: 10},
		{name: "lat out of range", riderID: "r1", lat: 91, lng: 0, fare: 10},
		{name: "lng out of range", riderID: "r1", lat: 0, lng: 181, fare: 10},
		{name: "nan coordinate", riderID: "r1", lat: math.NaN(), lng: 0, fare: 10},
		{name: "negative fare", riderID: "r1", lat: 40.7, lng: -74.0, fare: -1},
		{name: "nan fare", riderID: "r1", lat: 40.7, lng: -74.0, fare: math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRide(tt.riderID, tt.lat, tt.lng, 40.8, -73.9, tt.fare)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("NewRide() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRide_AssignDriver(t *testing.T) {
	r := newTestRide(t)

	if err := r.AssignDriver("driver-99"); err != nil {
		t.Fatalf("AssignDriver() error = %v", err)
	}
	if r.Status != StatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", r.Status)
	}
	if r.DriverID == nil || *r.DriverID != "driver-99" {
		t.Error("driver must be recorded")
	}
	if r.AcceptedAt == nil {
		t.Error("accepted_at must be set")
	}

	// second driver cannot claim an accepted ride
	if err := r.AssignDriver("driver-2"); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("second AssignDriver() error = %v, want ErrIllegalTransition", err)
	}
	if *r.DriverID != "driver-99" {
		t.Error("driver must be immutable once set")
	}
}

func TestRide_Complete(t *testing.T) {
	r := newTestRide(t)

	// cannot complete while still searching
	if err := r.Complete(); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Complete() on SEARCHING error = %v, want ErrIllegalTransition", err)
	}

	if err := r.AssignDriver("driver-99"); err != nil {
		t.Fatalf("AssignDriver() error = %v", err)
	}
	if err := r.Complete(); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if r.Status != StatusCompleted || r.CompletedAt == nil {
		t.Error("ride must be COMPLETED with completed_at set")
	}

	// terminal: nothing else goes through
	if err := r.Complete(); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("double Complete() error = %v, want ErrIllegalTransition", err)
	}
	if err := r.Cancel("late"); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("Cancel() after complete error = %v, want ErrIllegalTransition", err)
	}
}

func TestRide_Cancel(t *testing.T) {
	searching := newTestRide(t)
	if err := searching.Cancel("changed my mind"); err != nil {
		t.Fatalf("Cancel() on SEARCHING error = %v", err)
	}
	if searching.Status != StatusCancelled || searching.CancelledAt == nil {
		t.Error("ride must be CANCELLED with cancelled_at set")
	}
	if searching.CancellationReason == nil || *searching.CancellationReason != "changed my mind" {
		t.Error("cancellation reason must be recorded")
	}

	accepted := newTestRide(t)
	if err := accepted.AssignDriver("driver-99"); err != nil {
		t.Fatalf("AssignDriver() error = %v", err)
	}
	if err := accepted.Cancel(""); err != nil {
		t.Fatalf("Cancel() on ACCEPTED error = %v", err)
	}
	if accepted.CancellationReason != nil {
		t.Error("blank reason must stay unset")
	}
}
