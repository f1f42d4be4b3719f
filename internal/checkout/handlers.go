package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"

	"github.com/buyonegram/backend-bog/internal/common"
	"github.com/buyonegram/backend-bog/internal/coupon"
)

// Handler exposes the checkout endpoints.
type Handler struct {
	Svc *Service
}

// Totals quotes the checkout breakdown for a cart without placing an order.
func (h Handler) Totals(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	ctx, span := otel.Tracer("checkout.Handler").Start(r.Context(), "Checkout.Totals")
	defer span.End()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	totals, err := h.Svc.Totals(ctx, req)
	if err != nil {
		span.RecordError(err)
		writeCheckoutError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, totals)
}

// PlaceOrder creates the order and returns the payment payload.
func (h Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	ctx, span := otel.Tracer("checkout.Handler").Start(r.Context(), "Checkout.PlaceOrder")
	defer span.End()

	userID, ok := common.UserID(ctx)
	if !ok || userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	result, err := h.Svc.PlaceOrder(ctx, userID, req)
	if err != nil {
		span.RecordError(err)
		writeCheckoutError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, result)
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusBadRequest, "EMPTY_CART", "at least one item is required", nil)
	case errors.As(err, &validationErrs):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, coupon.ErrCouponNotFound):
		common.JSONError(w, http.StatusNotFound, "COUPON_NOT_FOUND", "coupon not found", nil)
	case errors.Is(err, coupon.ErrCouponInactive),
		errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrMinimumSpendUnmet),
		errors.Is(err, coupon.ErrUsageLimitReached),
		errors.Is(err, coupon.ErrPerUserLimitReached):
		common.JSONError(w, http.StatusUnprocessableEntity, "COUPON_REJECTED", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout failed", nil)
	}
}
