package notify

import (
	"context"

	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notification events to the structured log. Useful in dev
// mode and as a fallback when no delivery channel is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) PromotionActivated(ctx context.Context, userID string, promo *model.Promotion) error {
	ev := n.log.Info().
		Str("user_id", userID).
		Str("promotion_id", promo.ID).
		Str("property_id", promo.PropertyID).
		Str("tier", string(promo.TierType))
	if promo.EndDate != nil {
		ev = ev.Time("end_date", *promo.EndDate)
	}
	ev.Msg("promotion activated")
	return nil
}

func (n *LogNotifier) PaymentFailed(ctx context.Context, userID string, payment *model.Payment) error {
	n.log.Warn().
		Str("user_id", userID).
		Str("payment_id", payment.ID).
		Str("reference", payment.Reference).
		Int64("amount", payment.Amount).
		Msg("payment failed")
	return nil
}
