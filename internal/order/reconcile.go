// Package order owns the persisted order model, its lifecycle state
// machine, and the reconciliation logic that turns a possibly-inconsistent
// stored document into a canonical pricing view.
package order

import (
	"strings"
	"time"

	"github.com/buyonegram/backend-bog/internal/money"
)

// Source values record which stored field supplied the reconciled total.
const (
	SourceFinalAmount = "finalAmount"
	SourceTotalAmt    = "totalAmt"
	SourceDerived     = "derived"
)

// displayIDPrefix prefixes generated human-readable order codes.
const displayIDPrefix = "BOG-"

// LineItem is a product line as stored on the order document.
type LineItem struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	SubTotal  float64 `json:"subTotal"`
}

// CoinRedemption records coins burned as a payment method on the order.
type CoinRedemption struct {
	Amount float64 `json:"amount"`
}

// TimelineEntry is one recorded status change.
type TimelineEntry struct {
	Status    Status    `json:"status"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackingEvent is one courier tracking update received for the shipment.
type TrackingEvent struct {
	Status     string    `json:"status"`
	RawStatus  string    `json:"rawStatus,omitempty"`
	Location   string    `json:"location,omitempty"`
	Remark     string    `json:"remark,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Document is the persisted order. Derived monetary fields may have been
// written by different code paths over time and are reconciled on read;
// they are never trusted blindly.
type Document struct {
	ID             string `json:"_id,omitempty"`
	UserID         string `json:"userId,omitempty"`
	DisplayOrderID string `json:"displayOrderId,omitempty"`
	OrderNumber    string `json:"orderNumber,omitempty"`
	LegacyOrderID  string `json:"order_id,omitempty"`
	AltOrderID     string `json:"orderId,omitempty"`

	Products []LineItem `json:"products,omitempty"`

	Subtotal           float64         `json:"subtotal"`
	TotalAmt           float64         `json:"totalAmt"`
	FinalAmount        float64         `json:"finalAmount"`
	Shipping           float64         `json:"shipping"`
	Tax                float64         `json:"tax"`
	Discount           float64         `json:"discount"`
	DiscountAmount     float64         `json:"discountAmount"`
	MembershipDiscount float64         `json:"membershipDiscount"`
	InfluencerDiscount float64         `json:"influencerDiscount"`
	CoinRedemption     *CoinRedemption `json:"coinRedemption,omitempty"`

	CouponCode     string `json:"couponCode,omitempty"`
	InfluencerCode string `json:"influencerCode,omitempty"`

	OrderStatus    Status          `json:"order_status,omitempty"`
	ShipmentStatus string          `json:"shipmentStatus,omitempty"`
	AWB            string          `json:"awb,omitempty"`
	StatusTimeline []TimelineEntry `json:"statusTimeline,omitempty"`
	TrackingEvents []TrackingEvent `json:"trackingEvents,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Snapshot is the canonical pricing view computed from a Document. All
// fields trace back to a single reconciled total.
type Snapshot struct {
	ItemsGross           float64 `json:"itemsGross"`
	Subtotal             float64 `json:"subtotal"`
	TaxableAmount        float64 `json:"taxableAmount"`
	Tax                  float64 `json:"tax"`
	GstAmount            float64 `json:"gstAmount"`
	Shipping             float64 `json:"shipping"`
	Total                float64 `json:"total"`
	FinalAmount          float64 `json:"finalAmount"`
	TotalDiscount        float64 `json:"totalDiscount"`
	CouponDiscount       float64 `json:"couponDiscount"`
	MembershipDiscount   float64 `json:"membershipDiscount"`
	InfluencerDiscount   float64 `json:"influencerDiscount"`
	CoinRedemptionAmount float64 `json:"coinRedemptionAmount"`
	CouponCode           string  `json:"couponCode,omitempty"`
	InfluencerCode       string  `json:"influencerCode,omitempty"`
	Source               string  `json:"source"`
}

func itemsGross(doc Document) float64 {
	var sum float64
	for _, item := range doc.Products {
		qty := item.Quantity
		if qty < 0 {
			qty = 0
		}
		if item.SubTotal > 0 {
			sum += item.SubTotal
		} else {
			sum += item.Price * qty
		}
	}
	return money.Round2(sum)
}

// CalculateTotal reconciles the stored order document into a Snapshot.
// Stored authoritative fields win over recomputation to avoid drift;
// missing or zero fields fall back down the priority chain. The function
// never fails: malformed numbers degrade to zero.
func CalculateTotal(doc Document) Snapshot {
	gross := itemsGross(doc)
	shipping := money.Clamp2(doc.Shipping)
	tax := money.Clamp2(doc.Tax)
	discount := money.Clamp2(doc.Discount)
	couponDiscount := money.Clamp2(doc.DiscountAmount)
	membershipDiscount := money.Clamp2(doc.MembershipDiscount)
	influencerDiscount := money.Clamp2(doc.InfluencerDiscount)

	var coinAmount float64
	if doc.CoinRedemption != nil {
		coinAmount = money.Clamp2(doc.CoinRedemption.Amount)
	}

	subtotalStored := money.Clamp2(doc.Subtotal)
	totalAmtStored := money.Clamp2(doc.TotalAmt)
	finalAmountStored := money.Clamp2(doc.FinalAmount)

	// Prefer the explicit final amount, then totalAmt, then derive.
	var total float64
	source := SourceDerived
	switch {
	case finalAmountStored > 0:
		total = finalAmountStored
		source = SourceFinalAmount
	case totalAmtStored > 0:
		total = totalAmtStored
		source = SourceTotalAmt
	default:
		total = money.Clamp2(gross - discount + shipping)
	}

	// Derive the taxable subtotal so it always reconciles with total.
	subtotal := subtotalStored
	if subtotal <= 0 {
		subtotal = money.Clamp2(total - shipping - tax + coinAmount)
	}

	totalDiscount := discount
	if totalDiscount <= 0 {
		totalDiscount = money.Round2(membershipDiscount + influencerDiscount + couponDiscount)
	}

	return Snapshot{
		ItemsGross:           gross,
		Subtotal:             subtotal,
		TaxableAmount:        subtotal,
		Tax:                  tax,
		GstAmount:            tax,
		Shipping:             shipping,
		Total:                total,
		FinalAmount:          total,
		TotalDiscount:        totalDiscount,
		CouponDiscount:       couponDiscount,
		MembershipDiscount:   membershipDiscount,
		InfluencerDiscount:   influencerDiscount,
		CoinRedemptionAmount: coinAmount,
		CouponCode:           doc.CouponCode,
		InfluencerCode:       doc.InfluencerCode,
		Source:               source,
	}
}

// ResolveDisplayID returns the human-readable order code: an explicit
// identifier field when present, otherwise a generated code from the last
// eight characters of the raw order id.
func ResolveDisplayID(doc Document) string {
	for _, explicit := range []string{doc.DisplayOrderID, doc.OrderNumber, doc.LegacyOrderID, doc.AltOrderID} {
		if trimmed := strings.TrimSpace(explicit); trimmed != "" {
			return strings.ToUpper(trimmed)
		}
	}
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		return "N/A"
	}
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return displayIDPrefix + strings.ToUpper(id)
}

// Normalized is the API response shape for an order: the stored document
// with legacy fields overwritten by reconciled values so clients never see
// the inconsistent legacy field set directly.
type Normalized struct {
	Document
	Pricing Snapshot `json:"pricing"`
}

// NormalizeForResponse composes reconciliation and display-id resolution
// into the object returned by order endpoints.
func NormalizeForResponse(doc Document) Normalized {
	snapshot := CalculateTotal(doc)
	doc.DisplayOrderID = ResolveDisplayID(doc)
	doc.Subtotal = snapshot.Subtotal
	doc.Tax = snapshot.Tax
	doc.Shipping = snapshot.Shipping
	doc.Discount = snapshot.TotalDiscount
	doc.FinalAmount = snapshot.Total
	doc.TotalAmt = snapshot.Total
	return Normalized{Document: doc, Pricing: snapshot}
}
