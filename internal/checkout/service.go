// Package checkout implements server-side order placement: totals
// computation, order persistence, event emission, and the payment payload
// handed to the gateway.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/buyonegram/backend-bog/internal/coupon"
	"github.com/buyonegram/backend-bog/internal/events"
	"github.com/buyonegram/backend-bog/internal/gst"
	"github.com/buyonegram/backend-bog/internal/money"
	"github.com/buyonegram/backend-bog/internal/obs"
	"github.com/buyonegram/backend-bog/internal/order"
	"github.com/buyonegram/backend-bog/internal/pricing"
	"github.com/buyonegram/backend-bog/internal/settings"
	"github.com/buyonegram/backend-bog/internal/tasks"
)

// payableShipping is the shipping amount charged in payable totals. Every
// order ships free; the display estimator is cosmetic and must never leak
// into this value.
const payableShipping = 0.0

// ErrEmptyCart is returned when a checkout carries no purchasable lines.
var ErrEmptyCart = errors.New("checkout: no items")

// Item is one cart line submitted at checkout. Price is GST-inclusive.
type Item struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price" validate:"gt=0"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
}

// Request is the checkout input. An explicit CouponDiscount wins over the
// Coupon rule when both are present.
type Request struct {
	Items              []Item          `json:"items" validate:"required,min=1,dive"`
	GstRatePercent     float64         `json:"gstRatePercent" validate:"gte=0"`
	CouponCode         string          `json:"couponCode"`
	Coupon             *pricing.Coupon `json:"coupon,omitempty"`
	CouponDiscount     float64         `json:"couponDiscount" validate:"gte=0"`
	MembershipDiscount float64         `json:"membershipDiscount" validate:"gte=0"`
	InfluencerDiscount float64         `json:"influencerDiscount" validate:"gte=0"`
	CoinRedeemAmount   float64         `json:"coinRedeemAmount" validate:"gte=0"`
	InfluencerCode     string          `json:"influencerCode"`
}

// PaymentPayload is what the payment gateway receives. Shipping fields are
// contractually zero.
type PaymentPayload struct {
	OrderID        string  `json:"orderId"`
	DisplayOrderID string  `json:"displayOrderId"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Shipping       float64 `json:"shipping"`
	ShippingCost   float64 `json:"shippingCost"`
}

// Result is the full checkout response.
type Result struct {
	Order   order.Normalized `json:"order"`
	Totals  pricing.Totals   `json:"totals"`
	Payment PaymentPayload   `json:"payment"`
}

// Enqueuer is the subset of asynq.Client the service uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CouponResolver looks up the stored rule for a coupon code.
type CouponResolver interface {
	Resolve(ctx context.Context, code string) (coupon.Rule, error)
}

// Service performs checkout.
type Service struct {
	Orders   order.Repository
	Settings settings.Store
	Coupons  CouponResolver
	Bus      *events.Bus
	Queue    Enqueuer
	Validate *validator.Validate
	// DefaultGSTRate is the deployment-level rate used when neither the
	// request nor the tax settings provide one. Zero means the statutory
	// default.
	DefaultGSTRate float64
	Log            zerolog.Logger
}

// Totals computes the checkout breakdown without persisting anything.
func (s *Service) Totals(ctx context.Context, req Request) (pricing.Totals, error) {
	if err := s.validate(req); err != nil {
		return pricing.Totals{}, err
	}
	req, err := s.resolveCoupon(ctx, req)
	if err != nil {
		return pricing.Totals{}, err
	}
	totals := pricing.Compute(s.pricingInput(ctx, req))
	if obs.CheckoutComputedTotal != nil {
		obs.CheckoutComputedTotal.WithLabelValues("quote").Inc()
	}
	return totals, nil
}

// PlaceOrder computes totals, persists the order, emits order.created, and
// enqueues post-checkout work. Event and queue failures are logged but do
// not fail the placed order.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req Request) (Result, error) {
	if err := s.validate(req); err != nil {
		return Result{}, err
	}
	if s.Orders == nil {
		return Result{}, errors.New("checkout: order store not configured")
	}
	req, err := s.resolveCoupon(ctx, req)
	if err != nil {
		return Result{}, err
	}

	totals := pricing.Compute(s.pricingInput(ctx, req))

	doc := s.buildDocument(userID, req, totals)
	doc, err = s.Orders.Insert(ctx, doc)
	if err != nil {
		if obs.CheckoutComputedTotal != nil {
			obs.CheckoutComputedTotal.WithLabelValues("error").Inc()
		}
		return Result{}, fmt.Errorf("checkout: persist order: %w", err)
	}

	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicOrderCreated, doc.ID, map[string]any{
			"orderId":      doc.ID,
			"userId":       userID,
			"totalPayable": totals.TotalPayable,
		}); err != nil {
			s.Log.Warn().Err(err).Str("order_id", doc.ID).Msg("order.created emit failed")
		}
	}
	if s.Queue != nil {
		if task, err := tasks.NewOrderCreatedTask(doc.ID, userID); err == nil {
			if _, err := s.Queue.EnqueueContext(ctx, task); err != nil {
				s.Log.Warn().Err(err).Str("order_id", doc.ID).Msg("order.created enqueue failed")
			}
		}
	}
	if doc.CouponCode != "" && totals.CouponDiscount > 0 {
		if marker, ok := s.Coupons.(interface {
			MarkUsed(ctx context.Context, code string) error
		}); ok {
			if err := marker.MarkUsed(ctx, doc.CouponCode); err != nil {
				s.Log.Warn().Err(err).Str("coupon", doc.CouponCode).Msg("coupon usage count not recorded")
			}
		}
	}
	if totals.CoinRedeemAmount > 0 && obs.CoinRedemptionTotal != nil {
		obs.CoinRedemptionTotal.Inc()
	}
	if obs.CheckoutComputedTotal != nil {
		obs.CheckoutComputedTotal.WithLabelValues("placed").Inc()
	}

	return Result{
		Order:   order.NormalizeForResponse(doc),
		Totals:  totals,
		Payment: buildPaymentPayload(doc, totals),
	}, nil
}

func (s *Service) validate(req Request) error {
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(req); err != nil {
			return err
		}
	}
	return nil
}

// resolveCoupon turns a bare coupon code into a pricing coupon via the
// stored rule. An explicit coupon object or discount amount already on the
// request wins; validation failures surface as coupon sentinel errors.
func (s *Service) resolveCoupon(ctx context.Context, req Request) (Request, error) {
	if req.Coupon != nil || req.CouponDiscount > 0 || req.CouponCode == "" || s.Coupons == nil {
		return req, nil
	}
	rule, err := s.Coupons.Resolve(ctx, req.CouponCode)
	if err != nil {
		return Request{}, err
	}

	// Eligible base is the GST-exclusive subtotal after trade discounts.
	withoutCoupon := req
	withoutCoupon.CouponCode = ""
	eligible := pricing.Compute(s.pricingInput(ctx, withoutCoupon)).DiscountedSubtotal
	if err := rule.Validate(time.Now().UTC(), eligible); err != nil {
		return Request{}, err
	}
	req.Coupon = rule.PricingCoupon()
	return req, nil
}

// gstRate resolves the GST rate: request override first, then the admin tax
// settings, then the default.
func (s *Service) gstRate(ctx context.Context, override float64) float64 {
	if override > 0 {
		return override
	}
	fallback := gst.DefaultRatePercent
	if s.DefaultGSTRate > 0 {
		fallback = s.DefaultGSTRate
	}
	if s.Settings == nil {
		return fallback
	}
	var ts gst.TaxSettings
	if err := settings.Decode(ctx, s.Settings, settings.KeyTaxSettings, &ts); err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			s.Log.Warn().Err(err).Msg("tax settings unavailable, using default rate")
		}
		return fallback
	}
	if ts.TaxRate <= 0 {
		return fallback
	}
	return gst.RatePercentFromSettings(&ts)
}

func (s *Service) pricingInput(ctx context.Context, req Request) pricing.Input {
	items := make([]pricing.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, pricing.Item{Price: item.Price, Quantity: item.Quantity})
	}
	return pricing.Input{
		Items:                    items,
		GstRatePercent:           s.gstRate(ctx, req.GstRatePercent),
		BaseDiscountBeforeCoupon: money.Clamp2(req.MembershipDiscount) + money.Clamp2(req.InfluencerDiscount),
		Coupon:                   req.Coupon,
		CouponDiscount:           req.CouponDiscount,
		ShippingCost:             payableShipping,
		CoinRedeemAmount:         req.CoinRedeemAmount,
	}
}

func (s *Service) buildDocument(userID string, req Request, totals pricing.Totals) order.Document {
	now := time.Now().UTC()
	lines := make([]order.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, order.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			SubTotal:  money.Round2(item.Price * item.Quantity),
		})
	}
	doc := order.Document{
		UserID:             userID,
		Products:           lines,
		Subtotal:           totals.DiscountedSubtotal,
		TotalAmt:           totals.TotalPayable,
		FinalAmount:        totals.TotalPayable,
		Shipping:           payableShipping,
		Tax:                totals.GstAmount,
		Discount:           money.Round2(totals.BaseDiscountBeforeCoupon + totals.CouponDiscount),
		DiscountAmount:     totals.CouponDiscount,
		MembershipDiscount: money.Clamp2(req.MembershipDiscount),
		InfluencerDiscount: money.Clamp2(req.InfluencerDiscount),
		InfluencerCode:     req.InfluencerCode,
		OrderStatus:        order.StatusPaymentPending,
		CreatedAt:          now,
	}
	if req.Coupon != nil {
		doc.CouponCode = req.Coupon.Code
	} else if req.CouponCode != "" {
		doc.CouponCode = req.CouponCode
	}
	if totals.CoinRedeemAmount > 0 {
		doc.CoinRedemption = &order.CoinRedemption{Amount: totals.CoinRedeemAmount}
	}
	order.EnsureTimeline(&doc, "CHECKOUT", now)
	return doc
}

func buildPaymentPayload(doc order.Document, totals pricing.Totals) PaymentPayload {
	return PaymentPayload{
		OrderID:        doc.ID,
		DisplayOrderID: order.ResolveDisplayID(doc),
		Amount:         totals.TotalPayable,
		Currency:       "INR",
		Shipping:       0,
		ShippingCost:   0,
	}
}
