package repository

import (
	"context"
	"time"

	"realestate-marketplace/internal/domain/model"
)

type PromoCodeRepository interface {
	Save(ctx context.Context, tx Tx, c *model.PromoCode) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)

	// RedeemOnce increments times_used only while the code is active, unexpired
	// and under its cap. Returns false when the conditional update matched no
	// row. Must be called inside the same transaction as payment creation.
	RedeemOnce(ctx context.Context, tx Tx, code string, now time.Time) (bool, error)
}
