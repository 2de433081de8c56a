package model

import (
	"time"

	"realestate-marketplace/internal/domain"
)

type TierType string

const (
	TierBasic    TierType = "basic"
	TierStandard TierType = "standard"
	TierPremium  TierType = "premium"
)

// ValidDurations are the only purchasable promotion lengths, in days.
var ValidDurations = []int{7, 30, 60, 90}

func IsValidDuration(days int) bool {
	for _, d := range ValidDurations {
		if d == days {
			return true
		}
	}
	return false
}

// PromotionTier is static reference data: one row per tier type with fixed
// per-duration prices and a search boost rank. Immutable during a
// promotion's lifetime.
type PromotionTier struct {
	ID        string // UUID
	Type      TierType
	Prices    map[int]int64 // duration days -> price in minor units
	BoostRank int
	Features  []string
	Active    bool
	CreatedAt time.Time
}

// PriceFor returns the price for a given duration, or false when the tier
// does not offer that duration.
func (t *PromotionTier) PriceFor(days int) (int64, bool) {
	price, ok := t.Prices[days]
	return price, ok
}

type PromotionStatus string

const (
	PromotionStatusPending PromotionStatus = "pending"
	PromotionStatusActive  PromotionStatus = "active"
	PromotionStatusExpired PromotionStatus = "expired"
	PromotionStatusFailed  PromotionStatus = "failed"
)

// Promotion is one purchased visibility upgrade for one property. Exactly one
// Payment is created alongside it; dates stay nil until activation.
type Promotion struct {
	ID           string // UUID
	UserID       string // UUID
	PropertyID   string // UUID
	TierID       string // UUID
	TierType     TierType
	DurationDays int
	StartDate    *time.Time
	EndDate      *time.Time
	Status       PromotionStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPromotion constructs a pending promotion awaiting payment.
func NewPromotion(id, userID, propertyID string, tier *PromotionTier, durationDays int) (*Promotion, error) {
	if id == "" || userID == "" || propertyID == "" || tier == nil {
		return nil, domain.ErrInvalidArgument
	}
	if !IsValidDuration(durationDays) {
		return nil, domain.ErrInvalidDuration
	}
	now := time.Now()
	return &Promotion{
		ID:           id,
		UserID:       userID,
		PropertyID:   propertyID,
		TierID:       tier.ID,
		TierType:     tier.Type,
		DurationDays: durationDays,
		Status:       PromotionStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsRunning reports whether the promotion window covers now. Expiry is
// computed on read; the background sweep only catches up the stored status.
func (p *Promotion) IsRunning(now time.Time) bool {
	if p.Status != PromotionStatusActive || p.StartDate == nil || p.EndDate == nil {
		return false
	}
	return !now.Before(*p.StartDate) && now.Before(*p.EndDate)
}

// DaysRemaining returns whole days left in the promotion window, zero once
// elapsed or not yet activated.
func (p *Promotion) DaysRemaining(now time.Time) int {
	if p.EndDate == nil || now.After(*p.EndDate) {
		return 0
	}
	return int(p.EndDate.Sub(now).Hours() / 24)
}
