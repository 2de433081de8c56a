package model

import (
	"time"

	"realestate-marketplace/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // redirected to gateway; awaiting reconciliation
	PaymentStatusCompleted PaymentStatus = "completed" // verified OK at provider
	PaymentStatusFailed    PaymentStatus = "failed"    // verification failed or initiation aborted
)

// IsTerminal reports whether no further transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// Payment records one attempted promotion purchase against the external
// gateway. Reference is our ULID handed to the provider as idempotency key;
// GatewayTxID is the provider transaction id recorded on completion.
type Payment struct {
	ID          string // UUID
	UserID      string // UUID
	PromotionID *string
	Provider    string
	Amount      int64 // minor currency units
	Currency    string
	Method      string
	Reference   string
	GatewayTxID string
	Status      PaymentStatus
	PromoCode   string // code applied at initiation, if any
	Discount    int64  // discount amount deducted from the tier price
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time // set when completed
	Description string
	Meta        map[string]interface{} // extra gateway metadata (JSONB in DB)
}

// NewPayment constructs a pending payment for the given amount.
func NewPayment(id, userID, provider, reference string, amount int64, currency string) (*Payment, error) {
	if id == "" || userID == "" || reference == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Payment{
		ID:        id,
		UserID:    userID,
		Provider:  provider,
		Amount:    amount,
		Currency:  currency,
		Reference: reference,
		Status:    PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
