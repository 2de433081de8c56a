//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/usecase"
)

func TestPricingUseCase_Quote(t *testing.T) {
	ctx := context.Background()

	newDeps := func() (*memTierRepo, *memPromoCodeRepo, usecase.PricingUseCase) {
		tiers := newMemTierRepo()
		codes := newMemPromoCodeRepo()
		tiers.Save(ctx, nil, &model.PromotionTier{
			ID: "tier-std", Type: model.TierStandard,
			Prices: map[int]int64{7: 1000, 30: 3000}, Active: true,
		})
		return tiers, codes, usecase.NewPricingUseCase(tiers, codes, newTestLogger())
	}

	t.Run("returns the tier price for the duration", func(t *testing.T) {
		_, _, uc := newDeps()
		q, err := uc.Quote(ctx, model.TierStandard, 30, "")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if q.FinalPrice != 3000 || q.OriginalPrice != 3000 || q.CodeApplied {
			t.Errorf("unexpected quote: %+v", q)
		}
	})

	t.Run("applies a ten percent code by flooring the final price", func(t *testing.T) {
		_, codes, uc := newDeps()
		codes.Save(ctx, nil, &model.PromoCode{
			ID: "pc", Code: "SAVE10", DiscountPercent: 10, MaxUses: 5,
			ValidUntil: time.Now().Add(time.Hour), Active: true,
		})
		q, err := uc.Quote(ctx, model.TierStandard, 7, " save10 ")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if q.FinalPrice != 900 {
			t.Errorf("expected 900, got %d", q.FinalPrice)
		}
		if q.Discount != 100 || !q.CodeApplied {
			t.Errorf("unexpected quote: %+v", q)
		}
	})

	t.Run("quoting does not consume a use", func(t *testing.T) {
		_, codes, uc := newDeps()
		codes.Save(ctx, nil, &model.PromoCode{
			ID: "pc", Code: "SAVE10", DiscountPercent: 10, MaxUses: 5,
			ValidUntil: time.Now().Add(time.Hour), Active: true,
		})
		for i := 0; i < 3; i++ {
			if _, err := uc.Quote(ctx, model.TierStandard, 7, "SAVE10"); err != nil {
				t.Fatalf("quote %d: %v", i, err)
			}
		}
		c, _ := codes.FindByCode(ctx, nil, "SAVE10")
		if c.TimesUsed != 0 {
			t.Errorf("quotes must not consume uses, got %d", c.TimesUsed)
		}
	})

	t.Run("ignores unknown, expired and exhausted codes", func(t *testing.T) {
		_, codes, uc := newDeps()
		codes.Save(ctx, nil, &model.PromoCode{
			ID: "pc1", Code: "EXPIRED", DiscountPercent: 10, MaxUses: 5,
			ValidUntil: time.Now().Add(-time.Hour), Active: true,
		})
		codes.Save(ctx, nil, &model.PromoCode{
			ID: "pc2", Code: "SPENT", DiscountPercent: 10, MaxUses: 1, TimesUsed: 1,
			ValidUntil: time.Now().Add(time.Hour), Active: true,
		})

		for _, code := range []string{"NOPE", "EXPIRED", "SPENT"} {
			q, err := uc.Quote(ctx, model.TierStandard, 7, code)
			if err != nil {
				t.Fatalf("code %s: %v", code, err)
			}
			if q.CodeApplied || q.FinalPrice != 1000 {
				t.Errorf("code %s must be ignored, got %+v", code, q)
			}
		}
	})

	t.Run("rejects an unsupported duration", func(t *testing.T) {
		_, _, uc := newDeps()
		if _, err := uc.Quote(ctx, model.TierStandard, 14, ""); !errors.Is(err, domain.ErrInvalidDuration) {
			t.Fatalf("expected ErrInvalidDuration, got %v", err)
		}
	})

	t.Run("rejects an inactive tier", func(t *testing.T) {
		tiers, _, uc := newDeps()
		tiers.Save(ctx, nil, &model.PromotionTier{
			ID: "tier-basic", Type: model.TierBasic,
			Prices: map[int]int64{7: 500}, Active: false,
		})
		if _, err := uc.Quote(ctx, model.TierBasic, 7, ""); !errors.Is(err, domain.ErrTierUnavailable) {
			t.Fatalf("expected ErrTierUnavailable, got %v", err)
		}
	})
}
