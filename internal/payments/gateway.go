// Package payments validates and executes payments against subscriptions,
// extending the subscription on success.
package payments

import "context"

// Gateway is the external card-processing collaborator. Charge takes the
// amount in integer minor units and returns an opaque transaction identifier
// on success. Processor-reported rejections come back as *GatewayError;
// anything else is a transport failure.
type Gateway interface {
	Charge(ctx context.Context, amountMinor int64, currency, description string) (string, error)
}

// GatewayError is a typed rejection reported by the card processor.
type GatewayError struct {
	Code    string
	Message string
}

// Error renders the processor code and message.
func (e *GatewayError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}
