package handler

import (
	"context"
	"net/http"
	"strings"
)

// ----- Handler: GET /api/rides/estimate?origin=...&dest=... -----

func (handler *RideHTTPHandler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	origin := strings.TrimSpace(r.URL.Query().Get("origin"))
	dest := strings.TrimSpace(r.URL.Query().Get("dest"))
	if origin == "" || dest == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, kindInvalidInput, "origin and dest query parameters are required", nil)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, serviceCallTimeout)
	defer cancel()

	est, err := handler.svc.EstimateFare(ctxWithTimeout, origin, dest)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, est)
}
