package model

import "time"

// PromoCode is a percentage discount with a usage cap. Redemption happens
// through a conditional increment in the same transaction as payment
// creation, so TimesUsed can never exceed MaxUses under concurrency.
type PromoCode struct {
	ID              string // UUID
	Code            string // unique, case-insensitive
	DiscountPercent int
	MaxUses         int
	TimesUsed       int
	ValidUntil      time.Time
	Active          bool
	CreatedAt       time.Time
}

// Valid reports whether the code may still be applied at `now`.
func (c *PromoCode) Valid(now time.Time) bool {
	return c.Active && now.Before(c.ValidUntil) && c.TimesUsed < c.MaxUses
}

// ApplyDiscount returns base reduced by percent, floored to an integer.
func ApplyDiscount(base int64, percent int) int64 {
	if percent <= 0 {
		return base
	}
	if percent >= 100 {
		return 0
	}
	return base * int64(100-percent) / 100
}
