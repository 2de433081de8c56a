package model

import (
	"time"

	"realestate-marketplace/internal/domain"
)

type ApprovalStatus string

const (
	ApprovalStatusPending          ApprovalStatus = "pending"
	ApprovalStatusApproved         ApprovalStatus = "approved"
	ApprovalStatusRejected         ApprovalStatus = "rejected"
	ApprovalStatusChangesRequested ApprovalStatus = "changes_requested"
)

type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusSold      PropertyStatus = "sold"
	PropertyStatusRented    PropertyStatus = "rented"
)

// Property is a listing owned by a user. Its public visibility is derived
// from approval and promotion state; see ApplyCreateDefaults / ApplyUpdate.
type Property struct {
	ID             string // UUID
	OwnerID        string // UUID
	Title          string
	Description    string
	Price          int64 // asking price in minor currency units
	City           string
	PropertyStatus PropertyStatus
	ApprovalStatus ApprovalStatus
	IsActive       bool

	// Promotion-derived fields, written only through the activation path.
	IsPromoted     bool
	PromotionTier  TierType // empty when not promoted
	PromotionStart *time.Time
	PromotionEnd   *time.Time
	PromotionPrice int64
	IsFeatured     bool
	IsPremium      bool

	ApprovedBy *string
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewProperty validates and constructs a listing in its pre-moderation state.
func NewProperty(id, ownerID, title string, price int64) (*Property, error) {
	if id == "" || ownerID == "" || title == "" || price <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Property{
		ID:             id,
		OwnerID:        ownerID,
		Title:          title,
		Price:          price,
		PropertyStatus: PropertyStatusAvailable,
		ApprovalStatus: ApprovalStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsPubliclyListable reports whether the listing may appear in public search.
func (p *Property) IsPubliclyListable() bool {
	return p.ApprovalStatus == ApprovalStatusApproved &&
		p.IsActive &&
		p.PropertyStatus == PropertyStatusAvailable
}

// ApplyCreateDefaults derives approval and visibility state for a freshly
// created listing. Promoted listings and listings created by staff accounts
// skip moderation; everything else starts pending and hidden.
// Must run inside the same transaction as the insert.
func (p *Property) ApplyCreateDefaults(ownerIsStaff bool, approverID string, now time.Time) {
	promoted := p.IsPromoted || (p.PromotionTier != "" && p.PromotionTier != TierBasic)
	if promoted || ownerIsStaff {
		p.ApprovalStatus = ApprovalStatusApproved
		p.IsActive = true
		p.stampApproval(approverID, now)
	} else {
		p.ApprovalStatus = ApprovalStatusPending
		p.IsActive = false
	}
	if p.IsPromoted && p.PromotionTier == "" {
		p.PromotionTier = TierStandard
	}
	p.UpdatedAt = now
}

// ApplyUpdate re-derives visibility from the transition between prev and the
// receiver. Must run inside the same transaction as the update so no reader
// observes is_promoted=true with is_active=false.
func (p *Property) ApplyUpdate(prev *Property, approverID string, now time.Time) {
	if !prev.IsPromoted && p.IsPromoted {
		p.ApprovalStatus = ApprovalStatusApproved
		p.IsActive = true
		if p.ApprovedAt == nil {
			p.stampApproval(approverID, now)
		}
	}
	if p.ApprovalStatus == ApprovalStatusApproved && prev.ApprovalStatus != ApprovalStatusApproved {
		p.IsActive = true
		if p.ApprovedAt == nil {
			p.stampApproval(approverID, now)
		}
	}
	if p.ApprovalStatus != ApprovalStatusApproved && prev.ApprovalStatus == ApprovalStatusApproved {
		p.IsActive = false
	}
	if p.IsPromoted && p.PromotionTier == "" {
		p.PromotionTier = TierStandard
	}
	p.UpdatedAt = now
}

// ClearPromotion resets all promotion-derived flags after expiry.
func (p *Property) ClearPromotion(now time.Time) {
	p.IsPromoted = false
	p.PromotionTier = ""
	p.PromotionStart = nil
	p.PromotionEnd = nil
	p.PromotionPrice = 0
	p.IsFeatured = false
	p.IsPremium = false
	p.UpdatedAt = now
}

func (p *Property) stampApproval(approverID string, now time.Time) {
	if approverID != "" {
		p.ApprovedBy = &approverID
	}
	t := now
	p.ApprovedAt = &t
}
