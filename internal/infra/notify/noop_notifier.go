package notify

import (
	"context"

	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) Name() string { return "noop" }

func (NoopNotifier) PromotionActivated(ctx context.Context, userID string, promo *model.Promotion) error {
	return nil
}

func (NoopNotifier) PaymentFailed(ctx context.Context, userID string, payment *model.Payment) error {
	return nil
}
