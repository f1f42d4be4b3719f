package coupon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buyonegram/backend-bog/internal/pricing"
)

func TestComputePercentCappedByMaxDiscount(t *testing.T) {
	max := 30.0
	rule := Rule{Kind: "PERCENT", Value: 10, MaxDiscount: &max}

	// 10% of 785.00 is 78.50, clamped to the 30.00 cap.
	require.Equal(t, int64(3000), Compute(78_500, rule))
}

func TestComputeFlatClampedToEligible(t *testing.T) {
	rule := Rule{Kind: "FLAT", Value: 500}
	require.Equal(t, int64(12_000), Compute(12_000, rule))
}

func TestComputeUnknownKindIsZero(t *testing.T) {
	rule := Rule{Kind: "BOGO", Value: 50}
	require.Zero(t, Compute(10_000, rule))
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := int32(1)

	tests := []struct {
		name string
		rule Rule
		base float64
		want error
	}{
		{"ok", Rule{Active: true, MinSpend: 100}, 150, nil},
		{"inactive", Rule{Active: false}, 150, ErrCouponInactive},
		{"not yet valid", Rule{Active: true, ValidFrom: &future}, 150, ErrCouponInactive},
		{"expired", Rule{Active: true, ValidTo: &past}, 150, ErrCouponExpired},
		{"min spend", Rule{Active: true, MinSpend: 200}, 150, ErrMinimumSpendUnmet},
		{"usage limit", Rule{Active: true, UsageLimit: &limit, UsedCount: 1}, 150, ErrUsageLimitReached},
		{"per-user limit", Rule{Active: true, PerUserLimit: &limit, PerUserUsed: 1}, 150, ErrPerUserLimitReached},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate(now, tc.base)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestPricingCoupon(t *testing.T) {
	max := 25.0
	rule := Rule{Code: "WELCOME10", Kind: "percent", Value: 10, MaxDiscount: &max}
	pc := rule.PricingCoupon()
	require.NotNil(t, pc)
	require.Equal(t, pricing.CouponPercent, pc.Type)
	require.Equal(t, "WELCOME10", pc.Code)

	require.Nil(t, Rule{Kind: "BOGO"}.PricingCoupon())
}
