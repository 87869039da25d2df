package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"caby/internal/ports"
)

const serviceCallTimeout = 5 * time.Second

// --- Request DTO (HTTP boundary) ---

type createRideRequest struct {
	RiderID      string  `json:"rider_id"`
	RiderEmail   string  `json:"rider_email"`
	PickupLat    float64 `json:"pickup_lat"`
	PickupLng    float64 `json:"pickup_lng"`
	DropoffLat   float64 `json:"dropoff_lat"`
	DropoffLng   float64 `json:"dropoff_lng"`
	FareEstimate float64 `json:"fare_estimate"`
}

// ----- Handler: POST /api/rides/request -----

func (handler *RideHTTPHandler) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req createRideRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	in := ports.CreateRideInput{
		RiderID:    strings.TrimSpace(req.RiderID),
		RiderEmail: strings.TrimSpace(req.RiderEmail),
		PickupLat:  req.PickupLat,
		PickupLng:  req.PickupLng,
		DropoffLat: req.DropoffLat,
		DropoffLng: req.DropoffLng,
		Fare:       req.FareEstimate,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, serviceCallTimeout)
	defer cancel()

	res, err := handler.svc.CreateRide(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}
	ctxWithTimeout = handler.logger.WithRideID(ctxWithTimeout, res.RideID)

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, res)
}

// decodeStrict enforces JSON content type, a 1 MiB body limit, and rejects
// unknown fields. Returns false after writing the error response.
func (handler *RideHTTPHandler) decodeStrict(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, kindInvalidInput, "Content-Type must be application/json", nil)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, kindInvalidInput, "request body too large", err)
			return false
		}
		handler.httpError(ctx, w, http.StatusBadRequest, kindInvalidInput, "invalid JSON: "+err.Error(), err)
		return false
	}
	return true
}
