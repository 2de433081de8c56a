//go:build !integration

package model_test

import (
	"testing"
	"time"

	"realestate-marketplace/internal/domain/model"
)

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		base    int64
		percent int
		want    int64
	}{
		{1000, 10, 900},
		{999, 10, 899}, // floors the final price
		{1000, 0, 1000},
		{1000, -5, 1000},
		{1000, 100, 0},
		{1000, 150, 0},
		{333, 33, 223},
	}
	for _, c := range cases {
		if got := model.ApplyDiscount(c.base, c.percent); got != c.want {
			t.Errorf("ApplyDiscount(%d, %d) = %d, want %d", c.base, c.percent, got, c.want)
		}
	}
}

func TestPromotionTier_PriceFor(t *testing.T) {
	tier := &model.PromotionTier{Prices: map[int]int64{7: 1000, 30: 3000}}
	if p, ok := tier.PriceFor(7); !ok || p != 1000 {
		t.Errorf("PriceFor(7) = %d, %v", p, ok)
	}
	if _, ok := tier.PriceFor(14); ok {
		t.Error("expected no price for 14 days")
	}
}

func TestIsValidDuration(t *testing.T) {
	for _, d := range []int{7, 30, 60, 90} {
		if !model.IsValidDuration(d) {
			t.Errorf("expected %d to be valid", d)
		}
	}
	for _, d := range []int{0, 1, 14, 365, -7} {
		if model.IsValidDuration(d) {
			t.Errorf("expected %d to be invalid", d)
		}
	}
}

func TestPromotion_IsRunning(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	p := &model.Promotion{Status: model.PromotionStatusActive, StartDate: &start, EndDate: &end}
	if !p.IsRunning(now) {
		t.Error("expected running inside the window")
	}

	// An elapsed window reads as not running even before the sweep updates
	// the stored status.
	if p.IsRunning(end.Add(time.Minute)) {
		t.Error("expected not running after the window")
	}
	if p.IsRunning(start.Add(-time.Minute)) {
		t.Error("expected not running before the window")
	}

	pending := &model.Promotion{Status: model.PromotionStatusPending}
	if pending.IsRunning(now) {
		t.Error("pending promotion can never be running")
	}
}

func TestPromotion_DaysRemaining(t *testing.T) {
	now := time.Now()
	end := now.Add(72*time.Hour + time.Minute)
	p := &model.Promotion{EndDate: &end}
	if got := p.DaysRemaining(now); got != 3 {
		t.Errorf("expected 3 days remaining, got %d", got)
	}
	if got := p.DaysRemaining(end.Add(time.Hour)); got != 0 {
		t.Errorf("expected 0 after the window, got %d", got)
	}
	if got := (&model.Promotion{}).DaysRemaining(now); got != 0 {
		t.Errorf("expected 0 without an end date, got %d", got)
	}
}

func TestProperty_VisibilityGate(t *testing.T) {
	now := time.Now()

	t.Run("plain create stays pending and hidden", func(t *testing.T) {
		p, _ := model.NewProperty("p1", "o1", "Flat", 100)
		p.ApplyCreateDefaults(false, "", now)
		if p.ApprovalStatus != model.ApprovalStatusPending || p.IsActive {
			t.Errorf("got %s active=%v", p.ApprovalStatus, p.IsActive)
		}
	})

	t.Run("promoted create is approved and visible", func(t *testing.T) {
		p, _ := model.NewProperty("p1", "o1", "Flat", 100)
		p.IsPromoted = true
		p.ApplyCreateDefaults(false, "", now)
		if p.ApprovalStatus != model.ApprovalStatusApproved || !p.IsActive {
			t.Errorf("got %s active=%v", p.ApprovalStatus, p.IsActive)
		}
		if p.PromotionTier != model.TierStandard {
			t.Errorf("expected default standard tier, got %q", p.PromotionTier)
		}
	})

	t.Run("staff create is approved and stamps the approver", func(t *testing.T) {
		p, _ := model.NewProperty("p1", "staff-1", "Flat", 100)
		p.ApplyCreateDefaults(true, "staff-1", now)
		if p.ApprovalStatus != model.ApprovalStatusApproved || !p.IsActive {
			t.Errorf("got %s active=%v", p.ApprovalStatus, p.IsActive)
		}
		if p.ApprovedBy == nil || *p.ApprovedBy != "staff-1" || p.ApprovedAt == nil {
			t.Error("expected approval stamp")
		}
	})

	t.Run("promotion turning on mid-life approves", func(t *testing.T) {
		p, _ := model.NewProperty("p1", "o1", "Flat", 100)
		p.ApplyCreateDefaults(false, "", now)
		prev := *p
		p.IsPromoted = true
		p.ApplyUpdate(&prev, "", now)
		if p.ApprovalStatus != model.ApprovalStatusApproved || !p.IsActive {
			t.Errorf("got %s active=%v", p.ApprovalStatus, p.IsActive)
		}
	})

	t.Run("leaving approved deactivates", func(t *testing.T) {
		p, _ := model.NewProperty("p1", "o1", "Flat", 100)
		p.ApplyCreateDefaults(true, "staff-1", now)
		prev := *p
		p.ApprovalStatus = model.ApprovalStatusRejected
		p.ApplyUpdate(&prev, "staff-1", now)
		if p.IsActive {
			t.Error("rejected listing must be inactive")
		}
	})

	t.Run("clear promotion resets every derived flag", func(t *testing.T) {
		p, _ := model.NewProperty("p1", "o1", "Flat", 100)
		p.IsPromoted = true
		p.ApplyCreateDefaults(false, "", now)
		start, end := now, now.Add(7*24*time.Hour)
		p.PromotionStart = &start
		p.PromotionEnd = &end
		p.PromotionPrice = 1000
		p.IsFeatured = true
		p.IsPremium = true

		p.ClearPromotion(now)
		if p.IsPromoted || p.IsFeatured || p.IsPremium || p.PromotionTier != "" ||
			p.PromotionStart != nil || p.PromotionEnd != nil || p.PromotionPrice != 0 {
			t.Errorf("promotion flags not fully cleared: %+v", p)
		}
		// Approval and visibility are moderation's concern, not expiry's.
		if p.ApprovalStatus != model.ApprovalStatusApproved || !p.IsActive {
			t.Error("clearing a promotion must not touch approval state")
		}
	})
}

func TestProperty_IsPubliclyListable(t *testing.T) {
	p, _ := model.NewProperty("p1", "o1", "Flat", 100)
	p.ApprovalStatus = model.ApprovalStatusApproved
	p.IsActive = true
	if !p.IsPubliclyListable() {
		t.Error("expected listable")
	}
	p.PropertyStatus = model.PropertyStatusSold
	if p.IsPubliclyListable() {
		t.Error("sold listing must not be listable")
	}
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	if model.PaymentStatusPending.IsTerminal() {
		t.Error("pending is not terminal")
	}
	if !model.PaymentStatusCompleted.IsTerminal() || !model.PaymentStatusFailed.IsTerminal() {
		t.Error("completed and failed are terminal")
	}
}

func TestPromoCode_Valid(t *testing.T) {
	now := time.Now()
	c := &model.PromoCode{Active: true, MaxUses: 2, TimesUsed: 0, ValidUntil: now.Add(time.Hour)}
	if !c.Valid(now) {
		t.Error("expected valid")
	}
	c.TimesUsed = 2
	if c.Valid(now) {
		t.Error("exhausted code must be invalid")
	}
	c.TimesUsed = 0
	c.Active = false
	if c.Valid(now) {
		t.Error("inactive code must be invalid")
	}
	c.Active = true
	if c.Valid(c.ValidUntil.Add(time.Minute)) {
		t.Error("expired code must be invalid")
	}
}
