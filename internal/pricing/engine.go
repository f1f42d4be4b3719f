// Package pricing computes checkout totals. It is the single source of
// truth for the payable amount: GST-inclusive item prices in, reconciled
// paise-exact breakdown out.
package pricing

import (
	"math"
	"strings"

	"github.com/buyonegram/backend-bog/internal/gst"
	"github.com/buyonegram/backend-bog/internal/money"
)

// Coupon kinds understood by the engine.
const (
	CouponPercent = "PERCENT"
	CouponFlat    = "FLAT"
)

// Item describes a cart line with a GST-inclusive unit price.
type Item struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Coupon carries the discount rule applied at checkout. When Input also
// provides an explicit CouponDiscount the explicit amount wins.
type Coupon struct {
	Code        string   `json:"code"`
	Type        string   `json:"type"`
	Value       float64  `json:"value"`
	MaxDiscount *float64 `json:"maxDiscount,omitempty"`
}

// Input aggregates everything the totals calculation needs.
type Input struct {
	Items                    []Item  `json:"items"`
	GstRatePercent           float64 `json:"gstRatePercent"`
	BaseDiscountBeforeCoupon float64 `json:"baseDiscountBeforeCoupon"`
	Coupon                   *Coupon `json:"coupon,omitempty"`
	CouponDiscount           float64 `json:"couponDiscount"`
	ShippingCost             float64 `json:"shippingCost"`
	CoinRedeemAmount         float64 `json:"coinRedeemAmount"`
}

// LineBreakdown is the per-item view returned alongside the totals.
type LineBreakdown struct {
	Quantity           float64 `json:"quantity"`
	InclusiveUnitPrice float64 `json:"inclusiveUnitPrice"`
	BasePrice          float64 `json:"basePrice"`
	GstAmount          float64 `json:"gstAmount"`
	LineInclusive      float64 `json:"lineInclusive"`
	LineBase           float64 `json:"lineBase"`
	LineGst            float64 `json:"lineGst"`
}

// Totals is the complete checkout breakdown.
type Totals struct {
	OriginalInclusiveTotal   float64         `json:"originalInclusiveTotal"`
	BaseSubtotal             float64         `json:"baseSubtotal"`
	BaseDiscountBeforeCoupon float64         `json:"baseDiscountBeforeCoupon"`
	CouponDiscount           float64         `json:"couponDiscount"`
	DiscountedSubtotal       float64         `json:"discountedSubtotal"`
	GstRatePercent           float64         `json:"gstRatePercent"`
	GstAmount                float64         `json:"gstAmount"`
	ShippingCost             float64         `json:"shippingCost"`
	CoinRedeemAmount         float64         `json:"coinRedeemAmount"`
	TotalPayable             float64         `json:"totalPayable"`
	ItemBreakdown            []LineBreakdown `json:"itemBreakdown"`
}

// Compute calculates checkout totals.
//
// Flow:
//  1. GST-exclusive base subtotal is derived from inclusive item prices.
//  2. Trade discounts (before coupon) reduce the base, capped at it.
//  3. The coupon applies only on the GST-exclusive base after step 2.
//  4. GST is recalculated only on the discounted base.
//  5. Shipping is GST-free and coupon-free, added at the end.
//  6. Coin redemption is a payment method: it does not reduce GST and
//     shipping stays payable.
func Compute(in Input) Totals {
	rate := gst.NormalizeRatePercent(in.GstRatePercent, gst.DefaultRatePercent)

	var baseSubtotalPaise, originalInclusivePaise money.Paise
	lines := make([]LineBreakdown, 0, len(in.Items))
	for _, item := range in.Items {
		qty := item.Quantity
		if math.IsNaN(qty) || math.IsInf(qty, 0) || qty < 0 {
			qty = 0
		}
		unitPaise := money.NonNegativePaise(money.ToPaise(item.Price))
		basePaise, gstPaise := gst.SplitInclusivePaise(unitPaise, rate)

		// Line totals rounded once per line.
		lineInclusive := money.Paise(math.Round(float64(unitPaise) * qty))
		lineBase := money.Paise(math.Round(float64(basePaise) * qty))
		lineGst := money.Paise(math.Round(float64(gstPaise) * qty))

		baseSubtotalPaise += lineBase
		originalInclusivePaise += lineInclusive

		lines = append(lines, LineBreakdown{
			Quantity:           qty,
			InclusiveUnitPrice: money.FromPaise(unitPaise),
			BasePrice:          money.FromPaise(basePaise),
			GstAmount:          money.FromPaise(gstPaise),
			LineInclusive:      money.FromPaise(lineInclusive),
			LineBase:           money.FromPaise(lineBase),
			LineGst:            money.FromPaise(lineGst),
		})
	}

	preDiscountPaise := money.ClampPaise(money.ToPaise(in.BaseDiscountBeforeCoupon), 0, baseSubtotalPaise)
	baseAfterPrePaise := money.NonNegativePaise(baseSubtotalPaise - preDiscountPaise)

	couponPaise := money.NonNegativePaise(money.ToPaise(in.CouponDiscount))
	if couponPaise <= 0 && in.Coupon != nil {
		couponPaise = couponDiscountPaise(*in.Coupon, baseAfterPrePaise)
	}
	couponPaise = money.ClampPaise(couponPaise, 0, baseAfterPrePaise)

	discountedPaise := money.NonNegativePaise(baseAfterPrePaise - couponPaise)

	var gstPaise money.Paise
	if rate > 0 {
		gstPaise = money.Paise(math.Round(float64(discountedPaise) * rate / 100))
	}

	shippingPaise := money.NonNegativePaise(money.ToPaise(in.ShippingCost))

	productTotalPaise := discountedPaise + gstPaise
	coinPaise := money.ClampPaise(money.ToPaise(in.CoinRedeemAmount), 0, productTotalPaise)

	totalPayablePaise := money.NonNegativePaise(discountedPaise + gstPaise - coinPaise + shippingPaise)

	return Totals{
		OriginalInclusiveTotal:   money.FromPaise(originalInclusivePaise),
		BaseSubtotal:             money.FromPaise(baseSubtotalPaise),
		BaseDiscountBeforeCoupon: money.FromPaise(preDiscountPaise),
		CouponDiscount:           money.FromPaise(couponPaise),
		DiscountedSubtotal:       money.FromPaise(discountedPaise),
		GstRatePercent:           rate,
		GstAmount:                money.FromPaise(gstPaise),
		ShippingCost:             money.FromPaise(shippingPaise),
		CoinRedeemAmount:         money.FromPaise(coinPaise),
		TotalPayable:             money.FromPaise(totalPayablePaise),
		ItemBreakdown:            lines,
	}
}

func couponDiscountPaise(c Coupon, eligibleBasePaise money.Paise) money.Paise {
	var discount money.Paise
	switch strings.ToUpper(strings.TrimSpace(c.Type)) {
	case CouponPercent:
		percent := c.Value
		if math.IsNaN(percent) || math.IsInf(percent, 0) || percent <= 0 {
			return 0
		}
		discount = money.Paise(math.Round(float64(eligibleBasePaise) * percent / 100))
	case CouponFlat:
		discount = money.ToPaise(c.Value)
	default:
		return 0
	}
	if c.MaxDiscount != nil {
		discount = money.ClampPaise(discount, 0, money.NonNegativePaise(money.ToPaise(*c.MaxDiscount)))
	}
	return money.NonNegativePaise(discount)
}
