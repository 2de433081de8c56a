package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/repository"
)

var _ repository.PromoCodeRepository = (*promoCodeRepo)(nil)

type promoCodeRepo struct{ pool *pgxpool.Pool }

func NewPromoCodeRepo(pool *pgxpool.Pool) *promoCodeRepo {
	return &promoCodeRepo{pool: pool}
}

const promoCodeCols = `id, code, discount_percent, max_uses, times_used, valid_until, active, created_at`

func (r *promoCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.PromoCode) error {
	const q = `
INSERT INTO promo_codes (
  id, code, discount_percent, max_uses, times_used, valid_until, active, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
) ON CONFLICT (id) DO UPDATE SET
  discount_percent=$3, max_uses=$4, times_used=$5, valid_until=$6, active=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Code, c.DiscountPercent, c.MaxUses, c.TimesUsed, c.ValidUntil, c.Active, c.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *promoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	q := `SELECT ` + promoCodeCols + ` FROM promo_codes WHERE code=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	c := &model.PromoCode{}
	if err := row.Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.MaxUses, &c.TimesUsed, &c.ValidUntil, &c.Active, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

// RedeemOnce is a single conditional compare-and-increment: the counter can
// never pass max_uses regardless of how many purchases race on the code.
func (r *promoCodeRepo) RedeemOnce(ctx context.Context, tx repository.Tx, code string, now time.Time) (bool, error) {
	const q = `
    UPDATE promo_codes
       SET times_used = times_used + 1
     WHERE code = $1
       AND active
       AND valid_until > $2
       AND times_used < max_uses;`

	cmd, err := execSQL(ctx, r.pool, tx, q, code, now)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}
