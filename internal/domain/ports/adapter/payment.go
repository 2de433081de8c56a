package adapter

import (
	"context"
	"time"
)

// CheckoutRequest carries everything the provider needs to open a hosted
// checkout page. Reference doubles as the idempotency key on the provider
// side.
type CheckoutRequest struct {
	Amount      int64
	Currency    string
	Email       string
	Reference   string
	CallbackURL string
	Metadata    map[string]interface{}
}

type CheckoutSession struct {
	CheckoutURL string
	Reference   string
}

// VerifyResult is the provider-agnostic outcome of a transaction lookup.
// Succeeded=false with a nil error means the provider definitively reported
// failure; transport problems surface as errors instead.
type VerifyResult struct {
	Succeeded   bool
	GatewayTxID string
	Amount      int64
	PaidAt      *time.Time
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string

	// InitializeCheckout opens a payment intent and returns the redirect URL.
	InitializeCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// VerifyTransaction queries the provider for the outcome of a reference.
	VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error)

	// VerifyWebhookSignature checks the cryptographic signature over the raw
	// webhook payload before any of its contents may be trusted.
	VerifyWebhookSignature(payload []byte, signature string) bool
}
