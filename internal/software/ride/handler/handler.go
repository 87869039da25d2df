package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"caby/internal/domain/ride"
	"caby/internal/general/logger"
	"caby/internal/payments"
	"caby/internal/ports"
	"caby/internal/pricing"
	"caby/internal/routing"
)

// RideHTTPHandler adapts HTTP requests to the RideService.
type RideHTTPHandler struct {
	svc    ports.RideService
	logger *logger.Logger
}

// NewRideHTTPHandler wires an HTTP handler around the RideService.
func NewRideHTTPHandler(svc ports.RideService, logger *logger.Logger) *RideHTTPHandler {
	return &RideHTTPHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts ride endpoints on the provided mux.
func (handler *RideHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handler.handleHealth)
	mux.HandleFunc("GET /api/rides/estimate", handler.handleEstimate)
	mux.HandleFunc("POST /api/rides/request", handler.handleCreateRide)
	mux.HandleFunc("POST /api/rides/{ride_id}/cancel", handler.handleCancelRide)
	mux.HandleFunc("POST /api/rides/create-checkout", handler.handleCreateCheckout)

	// internal transition triggers, normally driven by driver tooling
	mux.HandleFunc("POST /api/internal/simulate-accept/{ride_id}", handler.handleSimulateAccept)
	mux.HandleFunc("POST /api/internal/complete/{ride_id}", handler.handleComplete)
}

// ----- error taxonomy -----

// errorKind is the machine-readable classification clients branch on.
type errorKind string

const (
	kindInvalidInput        errorKind = "INVALID_INPUT"
	kindRouteNotFound       errorKind = "ROUTE_NOT_FOUND"
	kindNotFound            errorKind = "NOT_FOUND"
	kindConflict            errorKind = "CONFLICT"
	kindIllegalTransition   errorKind = "ILLEGAL_TRANSITION"
	kindUpstreamUnavailable errorKind = "UPSTREAM_UNAVAILABLE"
	kindInternal            errorKind = "INTERNAL"
)

type errorBody struct {
	ErrorKind errorKind `json:"error_kind"`
	Message   string    `json:"message"`
}

// classify maps domain sentinels to an HTTP status and error kind. Order
// matters: ErrIllegalTransition before ErrConflict so a wrapped illegal
// transition is not reported as a lost race.
func classify(err error) (int, errorKind) {
	switch {
	case errors.Is(err, ride.ErrInvalidInput), errors.Is(err, pricing.ErrInvalidInput), errors.Is(err, payments.ErrInvalidAmount):
		return http.StatusBadRequest, kindInvalidInput
	case errors.Is(err, routing.ErrNoRoute):
		return http.StatusBadRequest, kindRouteNotFound
	case errors.Is(err, ride.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, ride.ErrIllegalTransition):
		return http.StatusConflict, kindIllegalTransition
	case errors.Is(err, ride.ErrConflict):
		return http.StatusConflict, kindConflict
	case errors.Is(err, routing.ErrUnavailable), errors.Is(err, payments.ErrUnavailable):
		return http.StatusBadGateway, kindUpstreamUnavailable
	default:
		return http.StatusInternalServerError, kindInternal
	}
}

// ----- general helpers -----

// jsonResponse encodes to a buffer first so we can control status on failure.
func (handler *RideHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	buf := []byte("{}")
	if data != nil {
		var err error
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error_kind":"INTERNAL","message":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// serviceError classifies err and writes the error body.
func (handler *RideHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	status, kind := classify(err)
	handler.httpError(ctx, w, status, kind, err.Error(), err)
}

// httpError sends a JSON error response with the kind and message.
func (handler *RideHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, kind errorKind, msg string, err error) {
	action := "request_failed"
	switch {
	case status >= 500:
		action = "http_upstream_error"
	case status == http.StatusBadRequest:
		action = "validation_failed"
	case status == http.StatusConflict:
		action = "transition_rejected"
	}
	if status >= 500 {
		handler.logger.Error(ctx, action, msg, err, map[string]any{"error_kind": string(kind)})
	} else {
		handler.logger.Info(ctx, action, msg, map[string]any{"error_kind": string(kind)})
	}

	handler.jsonResponse(ctx, w, status, errorBody{ErrorKind: kind, Message: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *RideHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}
