package payments

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway implements Gateway using the Stripe PaymentIntents API.
type StripeGateway struct{}

// NewStripeGateway configures the Stripe client with the given API key.
func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{}
}

// Charge creates and confirms a payment intent for the amount in minor units.
// Stripe card errors come back as *GatewayError; other failures are returned
// as-is for the caller to treat as transport errors.
func (g *StripeGateway) Charge(ctx context.Context, amountMinor int64, currency, description string) (string, error) {
	if amountMinor <= 0 {
		return "", &GatewayError{Code: "invalid_amount", Message: "amount must be positive"}
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountMinor),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
		Confirm:     stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return "", &GatewayError{
				Code:    string(stripeErr.Code),
				Message: stripeErr.Msg,
			}
		}
		return "", fmt.Errorf("payments: stripe charge: %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return "", &GatewayError{
			Code:    "not_succeeded",
			Message: fmt.Sprintf("payment intent %s is %s", intent.ID, intent.Status),
		}
	}
	return intent.ID, nil
}
