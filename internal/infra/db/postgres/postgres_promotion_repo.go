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

var _ repository.PromotionRepository = (*promotionRepo)(nil)

type promotionRepo struct{ pool *pgxpool.Pool }

func NewPromotionRepo(pool *pgxpool.Pool) *promotionRepo {
	return &promotionRepo{pool: pool}
}

const promotionCols = `id, user_id, property_id, tier_id, tier_type, duration_days, start_date, end_date, status, created_at, updated_at`

func scanPromotion(row pgx.Row) (*model.Promotion, error) {
	p := &model.Promotion{}
	if err := row.Scan(&p.ID, &p.UserID, &p.PropertyID, &p.TierID, &p.TierType, &p.DurationDays, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *promotionRepo) Save(ctx context.Context, tx repository.Tx, p *model.Promotion) error {
	const q = `
INSERT INTO property_promotions (
  id, user_id, property_id, tier_id, tier_type, duration_days, start_date, end_date, status, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
) ON CONFLICT (id) DO UPDATE SET
  start_date=$7, end_date=$8, status=$9, updated_at=$11;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.PropertyID, p.TierID, p.TierType, p.DurationDays, p.StartDate, p.EndDate, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *promotionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promotion, error) {
	q := `SELECT ` + promotionCols + ` FROM property_promotions WHERE id=$1`
	if isTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanPromotion(row)
}

func (r *promotionRepo) FindActiveByProperty(ctx context.Context, tx repository.Tx, propertyID string) (*model.Promotion, error) {
	q := `SELECT ` + promotionCols + ` FROM property_promotions WHERE property_id=$1 AND status='active' ORDER BY end_date DESC LIMIT 1`
	if isTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", propertyID)
	if err != nil {
		return nil, err
	}
	return scanPromotion(row)
}

func (r *promotionRepo) ActivateIfPending(ctx context.Context, tx repository.Tx, id string, start, end time.Time) (bool, error) {
	const q = `
    UPDATE property_promotions
       SET status='active', start_date=$2, end_date=$3, updated_at=NOW()
     WHERE id=$1 AND status='pending';`
	return r.conditional(ctx, tx, q, id, start, end)
}

func (r *promotionRepo) MarkFailedIfPending(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `UPDATE property_promotions SET status='failed', updated_at=NOW() WHERE id=$1 AND status='pending';`
	return r.conditional(ctx, tx, q, id)
}

func (r *promotionRepo) ExpireIfActive(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `UPDATE property_promotions SET status='expired', updated_at=NOW() WHERE id=$1 AND status='active';`
	return r.conditional(ctx, tx, q, id)
}

func (r *promotionRepo) conditional(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (bool, error) {
	cmd, err := execSQL(ctx, r.pool, tx, q, args...)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *promotionRepo) ListActiveEndedBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Promotion, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + promotionCols + ` FROM property_promotions WHERE status='active' AND end_date < $1 ORDER BY end_date ASC LIMIT $2;`
	return r.list(ctx, tx, q, cutoff, limit)
}

func (r *promotionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Promotion, error) {
	q := `SELECT ` + promotionCols + ` FROM property_promotions WHERE user_id=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, userID)
}

func (r *promotionRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Promotion, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
