package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/repository"
)

// PriceQuote is the caller-facing breakdown of a promotion price.
type PriceQuote struct {
	TierType      model.TierType
	DurationDays  int
	OriginalPrice int64
	FinalPrice    int64
	Discount      int64
	CodeApplied   bool
}

// PricingUseCase resolves tier prices and previews promo-code discounts.
// Quoting never consumes a code; redemption happens at purchase time.
type PricingUseCase interface {
	Quote(ctx context.Context, tierType model.TierType, durationDays int, promoCode string) (*PriceQuote, error)
	ListTiers(ctx context.Context) ([]*model.PromotionTier, error)
}

var _ PricingUseCase = (*pricingUC)(nil)

type pricingUC struct {
	tiers repository.PromotionTierRepository
	codes repository.PromoCodeRepository
	log   *zerolog.Logger
}

func NewPricingUseCase(tiers repository.PromotionTierRepository, codes repository.PromoCodeRepository, logger *zerolog.Logger) *pricingUC {
	return &pricingUC{tiers: tiers, codes: codes, log: logger}
}

func (u *pricingUC) Quote(ctx context.Context, tierType model.TierType, durationDays int, promoCode string) (*PriceQuote, error) {
	if !model.IsValidDuration(durationDays) {
		return nil, domain.ErrInvalidDuration
	}
	tier, err := u.tiers.FindByType(ctx, repository.NoTX, tierType)
	if err != nil {
		return nil, err
	}
	if !tier.Active {
		return nil, domain.ErrTierUnavailable
	}
	base, ok := tier.PriceFor(durationDays)
	if !ok {
		return nil, domain.ErrInvalidDuration
	}

	quote := &PriceQuote{
		TierType:      tier.Type,
		DurationDays:  durationDays,
		OriginalPrice: base,
		FinalPrice:    base,
	}

	// Unknown, expired or exhausted codes are ignored rather than rejected so
	// polling price widgets stay cheap; usage is only consumed at purchase.
	if code := normalizeCode(promoCode); code != "" {
		pc, err := u.codes.FindByCode(ctx, repository.NoTX, code)
		if err == nil && pc.Valid(time.Now()) {
			quote.FinalPrice = model.ApplyDiscount(base, pc.DiscountPercent)
			quote.Discount = base - quote.FinalPrice
			quote.CodeApplied = true
		} else if err != nil && err != domain.ErrNotFound {
			return nil, err
		}
	}
	return quote, nil
}

func (u *pricingUC) ListTiers(ctx context.Context) ([]*model.PromotionTier, error) {
	return u.tiers.ListActive(ctx, repository.NoTX)
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
