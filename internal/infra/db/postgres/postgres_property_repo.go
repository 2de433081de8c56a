package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/repository"
)

var _ repository.PropertyRepository = (*propertyRepo)(nil)

type propertyRepo struct{ pool *pgxpool.Pool }

func NewPropertyRepo(pool *pgxpool.Pool) *propertyRepo {
	return &propertyRepo{pool: pool}
}

const propertyCols = `id, owner_id, title, description, price, city, property_status, approval_status, is_active, is_promoted, promotion_tier, promotion_start, promotion_end, promotion_price, is_featured, is_premium, approved_by, approved_at, created_at, updated_at`

func scanProperty(row pgx.Row) (*model.Property, error) {
	p := &model.Property{}
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Price, &p.City, &p.PropertyStatus, &p.ApprovalStatus, &p.IsActive, &p.IsPromoted, &p.PromotionTier, &p.PromotionStart, &p.PromotionEnd, &p.PromotionPrice, &p.IsFeatured, &p.IsPremium, &p.ApprovedBy, &p.ApprovedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *propertyRepo) Save(ctx context.Context, tx repository.Tx, p *model.Property) error {
	const q = `
INSERT INTO properties (
  id, owner_id, title, description, price, city, property_status, approval_status, is_active, is_promoted, promotion_tier, promotion_start, promotion_end, promotion_price, is_featured, is_premium, approved_by, approved_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20
) ON CONFLICT (id) DO UPDATE SET
  title=$3, description=$4, price=$5, city=$6, property_status=$7, approval_status=$8, is_active=$9, is_promoted=$10, promotion_tier=$11, promotion_start=$12, promotion_end=$13, promotion_price=$14, is_featured=$15, is_premium=$16, approved_by=$17, approved_at=$18, updated_at=$20;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.OwnerID, p.Title, p.Description, p.Price, p.City, p.PropertyStatus, p.ApprovalStatus, p.IsActive, p.IsPromoted, p.PromotionTier, p.PromotionStart, p.PromotionEnd, p.PromotionPrice, p.IsFeatured, p.IsPremium, p.ApprovedBy, p.ApprovedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// FindByID locks the row FOR UPDATE inside a transaction so promotion
// activation and admin moderation of the same property serialize.
func (r *propertyRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Property, error) {
	q := `SELECT ` + propertyCols + ` FROM properties WHERE id=$1`
	if isTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanProperty(row)
}

func (r *propertyRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Property, error) {
	q := `SELECT ` + propertyCols + ` FROM properties WHERE owner_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, ownerID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
