package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"realestate-marketplace/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is a simple in-memory gateway for dev mode and tests. Every
// initialized checkout verifies as successful.
type NoopGateway struct {
	mu      sync.Mutex
	intents map[string]int64 // reference -> amount
}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{intents: make(map[string]int64)}
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) InitializeCheckout(ctx context.Context, r adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[r.Reference] = r.Amount
	return &adapter.CheckoutSession{
		CheckoutURL: "https://example.test/pay/" + r.Reference,
		Reference:   r.Reference,
	}, nil
}

func (g *NoopGateway) VerifyTransaction(ctx context.Context, reference string) (*adapter.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.intents[reference]
	if !ok {
		return nil, fmt.Errorf("noop: reference not found")
	}
	now := time.Now()
	return &adapter.VerifyResult{
		Succeeded:   true,
		GatewayTxID: "noop-" + reference,
		Amount:      amount,
		PaidAt:      &now,
	}, nil
}

func (g *NoopGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	return signature != ""
}
