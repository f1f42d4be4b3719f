package checkout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/buyonegram/backend-bog/internal/coupon"
	"github.com/buyonegram/backend-bog/internal/events"
	"github.com/buyonegram/backend-bog/internal/order"
	"github.com/buyonegram/backend-bog/internal/settings"
)

type fakeRepo struct {
	orders map[string]order.Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[string]order.Document{}}
}

func (f *fakeRepo) Insert(_ context.Context, doc order.Document) (order.Document, error) {
	if doc.ID == "" {
		doc.ID = "ord-test-1"
	}
	f.orders[doc.ID] = doc
	return doc, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (order.Document, error) {
	doc, ok := f.orders[id]
	if !ok {
		return order.Document{}, order.ErrNotFound
	}
	return doc, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, _ string, _, _ int) ([]order.Document, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Update(_ context.Context, doc order.Document) error {
	f.orders[doc.ID] = doc
	return nil
}

type staticCoupons struct {
	rules map[string]coupon.Rule
}

func (c staticCoupons) Resolve(_ context.Context, code string) (coupon.Rule, error) {
	rule, ok := c.rules[code]
	if !ok {
		return coupon.Rule{}, coupon.ErrCouponNotFound
	}
	return rule, nil
}

func newService(repo *fakeRepo) *Service {
	return &Service{
		Orders:   repo,
		Settings: settings.NewMemoryStore(),
		Bus:      &events.Bus{Store: &events.MemoryStore{}},
		Validate: validator.New(),
		Log:      zerolog.Nop(),
	}
}

func sampleRequest() Request {
	return Request{
		Items: []Item{
			{ProductID: "p1", Name: "Ragi Flour", Price: 210, Quantity: 2},
			{ProductID: "p2", Name: "Jaggery", Price: 157.5, Quantity: 3},
		},
		MembershipDiscount: 40,
		CouponDiscount:     25,
	}
}

func TestTotalsMatchesPricingFlow(t *testing.T) {
	svc := newService(newFakeRepo())

	totals, err := svc.Totals(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, 824.25, totals.TotalPayable)
	require.Equal(t, 5.0, totals.GstRatePercent)
	require.Zero(t, totals.ShippingCost)
}

func TestPlaceOrderPersistsAndEmits(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	store := svc.Bus.Store.(*events.MemoryStore)

	result, err := svc.PlaceOrder(context.Background(), "user-1", sampleRequest())
	require.NoError(t, err)

	require.Equal(t, "user-1", result.Order.UserID)
	require.Equal(t, order.StatusPaymentPending, result.Order.OrderStatus)
	require.Len(t, result.Order.StatusTimeline, 1)
	require.Equal(t, result.Totals.TotalPayable, result.Order.Pricing.Total)

	require.Len(t, store.Events, 1)
	require.Equal(t, events.TopicOrderCreated, store.Events[0].Topic)

	stored := repo.orders[result.Order.ID]
	require.Equal(t, result.Totals.TotalPayable, stored.FinalAmount)
}

func TestPaymentPayloadShippingAlwaysZero(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	req := sampleRequest()
	req.CoinRedeemAmount = 100

	result, err := svc.PlaceOrder(context.Background(), "user-1", req)
	require.NoError(t, err)

	require.Zero(t, result.Payment.Shipping)
	require.Zero(t, result.Payment.ShippingCost)
	require.Equal(t, result.Totals.TotalPayable, result.Payment.Amount)
	require.Equal(t, "INR", result.Payment.Currency)

	// The contract also holds on the serialized payload.
	raw, err := json.Marshal(result.Payment)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, 0.0, decoded["shipping"])
	require.Equal(t, 0.0, decoded["shippingCost"])
}

func TestGstRateFromSettings(t *testing.T) {
	svc := newService(newFakeRepo())
	raw, _ := json.Marshal(map[string]any{"taxRate": 12})
	require.NoError(t, svc.Settings.Set(context.Background(), settings.KeyTaxSettings, raw))

	totals, err := svc.Totals(context.Background(), Request{
		Items: []Item{{ProductID: "p1", Price: 112, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, 12.0, totals.GstRatePercent)
	require.Equal(t, 100.0, totals.BaseSubtotal)
}

func TestCouponCodeResolvedThroughRule(t *testing.T) {
	svc := newService(newFakeRepo())
	max := 30.0
	svc.Coupons = staticCoupons{rules: map[string]coupon.Rule{
		"SAVE10": {Code: "SAVE10", Kind: "PERCENT", Value: 10, MaxDiscount: &max, Active: true},
	}}

	req := Request{
		Items:      []Item{{ProductID: "p1", Price: 105, Quantity: 10}},
		CouponCode: "SAVE10",
	}
	totals, err := svc.Totals(context.Background(), req)
	require.NoError(t, err)
	// 10% of the 1000.00 base is 100, clamped to the 30.00 cap.
	require.Equal(t, 30.0, totals.CouponDiscount)
}

func TestCouponMinimumSpendRejected(t *testing.T) {
	svc := newService(newFakeRepo())
	svc.Coupons = staticCoupons{rules: map[string]coupon.Rule{
		"BIGCART": {Code: "BIGCART", Kind: "FLAT", Value: 50, MinSpend: 5000, Active: true},
	}}

	req := Request{
		Items:      []Item{{ProductID: "p1", Price: 105, Quantity: 1}},
		CouponCode: "BIGCART",
	}
	_, err := svc.Totals(context.Background(), req)
	require.ErrorIs(t, err, coupon.ErrMinimumSpendUnmet)
}

func TestEmptyCartRejected(t *testing.T) {
	svc := newService(newFakeRepo())
	_, err := svc.Totals(context.Background(), Request{})
	require.ErrorIs(t, err, ErrEmptyCart)
}
