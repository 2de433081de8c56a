package repository

import (
	"context"
	"time"

	"realestate-marketplace/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByReference(ctx context.Context, tx Tx, reference string) (*model.Payment, error)
	FindByPromotionID(ctx context.Context, tx Tx, promotionID string) (*model.Payment, error)

	// UpdateStatusIfPending atomically moves a payment out of 'pending'.
	// Returns false when the payment was already terminal; exactly one caller
	// observes true for any given payment.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus, gatewayTxID *string, paidAt *time.Time) (bool, error)

	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
	ListPendingByUser(ctx context.Context, tx Tx, userID string) ([]*model.Payment, error)
	SumCompletedByUser(ctx context.Context, tx Tx, userID string) (int64, error)
}
