// Package payments creates hosted checkout sessions. There is no safe
// fallback for money movement, so provider failures surface to the caller.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"caby/internal/ports"
)

var (
	ErrUnavailable   = errors.New("payment provider unavailable")
	ErrInvalidAmount = errors.New("amount must be a positive finite number")
)

// StripeProvider creates Stripe Checkout sessions via an explicitly
// constructed API client (no package-global key).
type StripeProvider struct {
	api        *client.API
	successURL string
	cancelURL  string
}

func NewStripeProvider(apiKey, successURL, cancelURL string) *StripeProvider {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{
		api:        api,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckoutSession returns the hosted checkout URL for a ride payment.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in ports.CheckoutInput) (string, error) {
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return "", ErrInvalidAmount
	}
	currency := in.Currency
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(p.successURL),
		CancelURL:          stripe.String(p.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(int64(math.Round(in.Amount * 100))), // dollars -> cents
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String("Caby Ride"),
					Description: stripe.String("Trip from A to B"),
				},
			},
		}},
	}
	if in.RiderEmail != "" {
		params.CustomerEmail = stripe.String(in.RiderEmail)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return sess.URL, nil
}
