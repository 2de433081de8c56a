package adapter

import (
	"context"

	"realestate-marketplace/internal/domain/model"
)

// Notifier delivers best-effort user notifications. The concrete strategy is
// selected once at process start and injected into the use cases; delivery
// failure never rolls back the state change that triggered it.
type Notifier interface {
	Name() string
	PromotionActivated(ctx context.Context, userID string, promo *model.Promotion) error
	PaymentFailed(ctx context.Context, userID string, payment *model.Payment) error
}
