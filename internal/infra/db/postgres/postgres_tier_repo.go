package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/repository"
)

var _ repository.PromotionTierRepository = (*tierRepo)(nil)

type tierRepo struct{ pool *pgxpool.Pool }

func NewTierRepo(pool *pgxpool.Pool) *tierRepo {
	return &tierRepo{pool: pool}
}

const tierCols = `id, tier_type, prices, boost_rank, features, active, created_at`

// tier prices are stored as a JSONB map of duration-days -> price.
func scanTier(row pgx.Row) (*model.PromotionTier, error) {
	t := &model.PromotionTier{}
	var prices []byte
	if err := row.Scan(&t.ID, &t.Type, &prices, &t.BoostRank, &t.Features, &t.Active, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if err := json.Unmarshal(prices, &t.Prices); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *tierRepo) Save(ctx context.Context, tx repository.Tx, t *model.PromotionTier) error {
	prices, err := json.Marshal(t.Prices)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO promotion_tiers (
  id, tier_type, prices, boost_rank, features, active, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7
) ON CONFLICT (id) DO UPDATE SET
  prices=$3, boost_rank=$4, features=$5, active=$6;`

	if _, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Type, prices, t.BoostRank, t.Features, t.Active, t.CreatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *tierRepo) FindByType(ctx context.Context, tx repository.Tx, tierType model.TierType) (*model.PromotionTier, error) {
	q := `SELECT ` + tierCols + ` FROM promotion_tiers WHERE tier_type=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, tierType)
	if err != nil {
		return nil, err
	}
	return scanTier(row)
}

func (r *tierRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PromotionTier, error) {
	q := `SELECT ` + tierCols + ` FROM promotion_tiers WHERE active ORDER BY boost_rank ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.PromotionTier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
