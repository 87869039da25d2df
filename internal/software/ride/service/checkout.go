package service

import (
	"context"
	"fmt"
	"math"

	"caby/internal/domain/ride"
	"caby/internal/ports"
)

// CreateCheckout creates a hosted payment session for the given amount.
func (service *rideService) CreateCheckout(ctx context.Context, in ports.CheckoutInput) (ports.CheckoutResult, error) {
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return ports.CheckoutResult{}, fmt.Errorf("%w: amount must be positive", ride.ErrInvalidInput)
	}

	url, err := service.payments.CreateCheckoutSession(ctx, in)
	if err != nil {
		service.logger.Error(ctx, "checkout_create_failed", "Failed to create checkout session", err,
			map[string]any{"amount": in.Amount})
		return ports.CheckoutResult{}, err
	}

	service.logger.Info(ctx, "checkout_created", "Checkout session created",
		map[string]any{"amount": in.Amount})

	return ports.CheckoutResult{CheckoutURL: url}, nil
}
