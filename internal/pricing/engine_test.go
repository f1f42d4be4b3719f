package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buyonegram/backend-bog/internal/money"
	"github.com/buyonegram/backend-bog/internal/pricing"
)

func TestComputeSingleLine(t *testing.T) {
	// 105 inclusive at 5% -> 100 base + 5 GST per unit.
	totals := pricing.Compute(pricing.Input{
		Items:          []pricing.Item{{Price: 105, Quantity: 4}},
		GstRatePercent: 5,
	})
	require.Equal(t, 420.0, totals.OriginalInclusiveTotal)
	require.Equal(t, 400.0, totals.BaseSubtotal)
	require.Equal(t, 400.0, totals.DiscountedSubtotal)
	require.Equal(t, 20.0, totals.GstAmount)
	require.Equal(t, 420.0, totals.TotalPayable)
	require.Len(t, totals.ItemBreakdown, 1)
	require.Equal(t, 100.0, totals.ItemBreakdown[0].BasePrice)
	require.Equal(t, 5.0, totals.ItemBreakdown[0].GstAmount)
}

func TestComputeShippingIndependence(t *testing.T) {
	base := pricing.Input{
		Items: []pricing.Item{
			{Price: 210, Quantity: 2},
			{Price: 157.5, Quantity: 3},
		},
		GstRatePercent:           5,
		BaseDiscountBeforeCoupon: 40,
		CouponDiscount:           25,
	}

	without := pricing.Compute(base)
	withShipping := base
	withShipping.ShippingCost = 150
	with := pricing.Compute(withShipping)

	require.Equal(t, 0.0, without.ShippingCost)
	require.Equal(t, money.Round2(without.DiscountedSubtotal+without.GstAmount), without.TotalPayable)
	require.Equal(t, money.Round2(without.TotalPayable+150), with.TotalPayable)
}

func TestComputeCouponRulePercent(t *testing.T) {
	maxDiscount := 30.0
	totals := pricing.Compute(pricing.Input{
		Items:          []pricing.Item{{Price: 105, Quantity: 10}},
		GstRatePercent: 5,
		Coupon:         &pricing.Coupon{Code: "SAVE10", Type: "PERCENT", Value: 10, MaxDiscount: &maxDiscount},
	})
	// 10% of 1000 base = 100, capped at 30.
	require.Equal(t, 30.0, totals.CouponDiscount)
	require.Equal(t, 970.0, totals.DiscountedSubtotal)
	require.Equal(t, 48.5, totals.GstAmount)
}

func TestComputeCouponRuleFlat(t *testing.T) {
	totals := pricing.Compute(pricing.Input{
		Items:          []pricing.Item{{Price: 105, Quantity: 1}},
		GstRatePercent: 5,
		Coupon:         &pricing.Coupon{Code: "FLAT500", Type: "FLAT", Value: 500},
	})
	// Flat 500 clamps to the 100 base.
	require.Equal(t, 100.0, totals.CouponDiscount)
	require.Equal(t, 0.0, totals.DiscountedSubtotal)
	require.Equal(t, 0.0, totals.TotalPayable)
}

func TestComputeExplicitCouponDiscountWins(t *testing.T) {
	totals := pricing.Compute(pricing.Input{
		Items:          []pricing.Item{{Price: 105, Quantity: 10}},
		GstRatePercent: 5,
		Coupon:         &pricing.Coupon{Code: "SAVE10", Type: "PERCENT", Value: 10},
		CouponDiscount: 25,
	})
	require.Equal(t, 25.0, totals.CouponDiscount)
}

func TestComputeCoinRedemption(t *testing.T) {
	totals := pricing.Compute(pricing.Input{
		Items:            []pricing.Item{{Price: 105, Quantity: 1}},
		GstRatePercent:   5,
		ShippingCost:     50,
		CoinRedeemAmount: 10_000,
	})
	// Coins cap at the product total (105); shipping stays payable.
	require.Equal(t, 105.0, totals.CoinRedeemAmount)
	require.Equal(t, 50.0, totals.TotalPayable)
}

func TestComputeCoinsDoNotReduceGst(t *testing.T) {
	without := pricing.Compute(pricing.Input{
		Items:          []pricing.Item{{Price: 210, Quantity: 2}},
		GstRatePercent: 5,
	})
	with := pricing.Compute(pricing.Input{
		Items:            []pricing.Item{{Price: 210, Quantity: 2}},
		GstRatePercent:   5,
		CoinRedeemAmount: 100,
	})
	require.Equal(t, without.GstAmount, with.GstAmount)
	require.Equal(t, money.Round2(without.TotalPayable-100), with.TotalPayable)
}

func TestComputeDegenerateInputs(t *testing.T) {
	totals := pricing.Compute(pricing.Input{
		Items: []pricing.Item{
			{Price: -50, Quantity: 2},
			{Price: 105, Quantity: -1},
		},
		GstRatePercent:           -1, // falls back to 5%
		BaseDiscountBeforeCoupon: -40,
		ShippingCost:             -20,
	})
	require.Equal(t, 0.0, totals.BaseSubtotal)
	require.Equal(t, 0.0, totals.ShippingCost)
	require.Equal(t, 0.0, totals.TotalPayable)
	require.Equal(t, 5.0, totals.GstRatePercent)
}

func TestComputePreDiscountCappedAtBase(t *testing.T) {
	totals := pricing.Compute(pricing.Input{
		Items:                    []pricing.Item{{Price: 105, Quantity: 1}},
		GstRatePercent:           5,
		BaseDiscountBeforeCoupon: 500,
	})
	require.Equal(t, 100.0, totals.BaseDiscountBeforeCoupon)
	require.Equal(t, 0.0, totals.TotalPayable)
}
