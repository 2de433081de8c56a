package repository

import (
	"context"

	"realestate-marketplace/internal/domain/model"
)

type PromotionTierRepository interface {
	Save(ctx context.Context, tx Tx, t *model.PromotionTier) error
	FindByType(ctx context.Context, tx Tx, tierType model.TierType) (*model.PromotionTier, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.PromotionTier, error)
}
