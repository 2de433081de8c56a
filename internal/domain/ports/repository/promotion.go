package repository

import (
	"context"
	"time"

	"realestate-marketplace/internal/domain/model"
)

type PromotionRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Promotion) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Promotion, error)
	FindActiveByProperty(ctx context.Context, tx Tx, propertyID string) (*model.Promotion, error)

	// ActivateIfPending performs the pending->active transition and stamps the
	// window; returns false when the promotion already left 'pending'.
	ActivateIfPending(ctx context.Context, tx Tx, id string, start, end time.Time) (bool, error)

	// MarkFailedIfPending closes a pending promotion after payment failure;
	// no-op (false) when already terminal or active.
	MarkFailedIfPending(ctx context.Context, tx Tx, id string) (bool, error)

	// ExpireIfActive moves active->expired; false when not active anymore.
	ExpireIfActive(ctx context.Context, tx Tx, id string) (bool, error)

	ListActiveEndedBefore(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Promotion, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Promotion, error)
}
