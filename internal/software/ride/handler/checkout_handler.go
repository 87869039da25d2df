package handler

import (
	"context"
	"net/http"
	"strings"

	"caby/internal/ports"
)

type createCheckoutRequest struct {
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	RiderEmail string  `json:"rider_email"`
}

// ----- Handler: POST /api/rides/create-checkout -----

func (handler *RideHTTPHandler) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req createCheckoutRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, serviceCallTimeout)
	defer cancel()

	res, err := handler.svc.CreateCheckout(ctxWithTimeout, ports.CheckoutInput{
		Amount:     req.Amount,
		Currency:   strings.ToLower(strings.TrimSpace(req.Currency)),
		RiderEmail: strings.TrimSpace(req.RiderEmail),
	})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
