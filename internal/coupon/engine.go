// Package coupon evaluates coupon rules at checkout time. Rules are validated
// against the GST-exclusive eligible base; the monetary split itself happens
// in the pricing engine.
package coupon

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/buyonegram/backend-bog/internal/money"
	"github.com/buyonegram/backend-bog/internal/pricing"
)

var (
	// ErrCouponNotFound is returned when the code does not resolve to a rule.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrCouponInactive is returned when the coupon is disabled or not yet valid.
	ErrCouponInactive = errors.New("coupon not active")
	// ErrCouponExpired is returned when the coupon validity window has passed.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrMinimumSpendUnmet indicates the eligible base did not meet the coupon requirement.
	ErrMinimumSpendUnmet = errors.New("coupon minimum spend not met")
	// ErrUsageLimitReached indicates the coupon has exhausted its global quota.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrPerUserLimitReached indicates the caller has exceeded the per-user allowance.
	ErrPerUserLimitReached = errors.New("coupon per-user usage limit reached")
)

// Rule captures the runtime constraints of a coupon. Amounts are rupees to
// match the stored coupon documents.
type Rule struct {
	Code         string
	Kind         string
	Value        float64
	MaxDiscount  *float64
	MinSpend     float64
	Active       bool
	ValidFrom    *time.Time
	ValidTo      *time.Time
	UsageLimit   *int32
	UsedCount    int32
	PerUserLimit *int32
	PerUserUsed  int32
}

// Validate ensures the rule can be applied at the provided instant against the
// GST-exclusive eligible base.
func (r Rule) Validate(now time.Time, eligibleBase float64) error {
	if !r.Active {
		return ErrCouponInactive
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return ErrCouponInactive
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return ErrCouponExpired
	}
	if eligibleBase < r.MinSpend {
		return ErrMinimumSpendUnmet
	}
	if r.UsageLimit != nil && *r.UsageLimit >= 0 && r.UsedCount >= *r.UsageLimit {
		return ErrUsageLimitReached
	}
	if r.PerUserLimit != nil && *r.PerUserLimit > 0 && r.PerUserUsed >= *r.PerUserLimit {
		return ErrPerUserLimitReached
	}
	return nil
}

// Compute determines the discount in paise for the eligible base, clamped to
// the base and to MaxDiscount when set.
func Compute(eligible money.Paise, r Rule) money.Paise {
	if eligible <= 0 {
		return 0
	}
	var discount money.Paise
	switch {
	case strings.EqualFold(r.Kind, pricing.CouponPercent):
		if r.Value <= 0 {
			return 0
		}
		discount = money.Paise(math.Round(float64(eligible) * r.Value / 100))
	case strings.EqualFold(r.Kind, pricing.CouponFlat):
		discount = money.ToPaise(r.Value)
	default:
		return 0
	}
	if r.MaxDiscount != nil {
		discount = money.ClampPaise(discount, 0, money.NonNegativePaise(money.ToPaise(*r.MaxDiscount)))
	}
	if discount > eligible {
		discount = eligible
	}
	return money.NonNegativePaise(discount)
}

// PricingCoupon converts the rule into the shape the pricing engine consumes.
func (r Rule) PricingCoupon() *pricing.Coupon {
	kind := strings.ToUpper(r.Kind)
	if kind != pricing.CouponPercent && kind != pricing.CouponFlat {
		return nil
	}
	return &pricing.Coupon{
		Code:        r.Code,
		Type:        kind,
		Value:       r.Value,
		MaxDiscount: r.MaxDiscount,
	}
}
