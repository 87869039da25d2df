package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"caby/internal/domain/ride"
)

// rideView is the transition response shape shared by accept, complete and
// cancel.
type rideView struct {
	RideID    string     `json:"ride_id"`
	Status    string     `json:"status"`
	DriverID  *string    `json:"driver_id,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
	Reason    *string    `json:"cancellation_reason,omitempty"`
	Completed *time.Time `json:"completed_at,omitempty"`
}

func toRideView(rd *ride.Ride) rideView {
	return rideView{
		RideID:    rd.ID,
		Status:    rd.Status.String(),
		DriverID:  rd.DriverID,
		UpdatedAt: rd.UpdatedAt,
		Reason:    rd.CancellationReason,
		Completed: rd.CompletedAt,
	}
}

// ----- Handler: POST /api/internal/simulate-accept/{ride_id} -----

func (handler *RideHTTPHandler) handleSimulateAccept(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID := strings.TrimSpace(r.PathValue("ride_id"))
	if rideID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, kindInvalidInput, "ride_id is required", nil)
		return
	}
	ctx = handler.logger.WithRideID(ctx, rideID)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, serviceCallTimeout)
	defer cancel()

	rd, err := handler.svc.AcceptRide(ctxWithTimeout, rideID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, toRideView(rd))
}

// ----- Handler: POST /api/internal/complete/{ride_id} -----

func (handler *RideHTTPHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID := strings.TrimSpace(r.PathValue("ride_id"))
	if rideID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, kindInvalidInput, "ride_id is required", nil)
		return
	}
	ctx = handler.logger.WithRideID(ctx, rideID)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, serviceCallTimeout)
	defer cancel()

	rd, err := handler.svc.CompleteRide(ctxWithTimeout, rideID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, toRideView(rd))
}

// ----- Handler: POST /api/rides/{ride_id}/cancel -----

type cancelRideRequest struct {
	Reason string `json:"reason"`
}

func (handler *RideHTTPHandler) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID := strings.TrimSpace(r.PathValue("ride_id"))
	if rideID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, kindInvalidInput, "ride_id is required", nil)
		return
	}
	ctx = handler.logger.WithRideID(ctx, rideID)

	// reason body is optional
	var req cancelRideRequest
	if r.Body != nil && r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, kindInvalidInput, "invalid JSON: "+err.Error(), err)
			return
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, serviceCallTimeout)
	defer cancel()

	rd, err := handler.svc.CancelRide(ctxWithTimeout, rideID, strings.TrimSpace(req.Reason))
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, toRideView(rd))
}

// ----- Handler: GET /api/health -----

func (handler *RideHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
