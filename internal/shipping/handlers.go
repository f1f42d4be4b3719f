package shipping

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/buyonegram/backend-bog/internal/common"
)

// Handler exposes the shipping display-metrics and quote endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// DisplayMetrics serves the cached display metrics for the cart
// strike-through UI.
func (h Handler) DisplayMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shipping service not configured", nil)
		return
	}
	common.JSONData(w, http.StatusOK, h.Svc.DisplayMetrics(r.Context()))
}

type quoteRequest struct {
	DestinationPincode string  `json:"destinationPincode" validate:"required"`
	Subtotal           float64 `json:"subtotal" validate:"gte=0"`
}

// Quote returns the zone, weight slab and (always free) charge for a
// destination pincode.
func (h Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	if !ValidatePincode(req.DestinationPincode) {
		common.JSONError(w, http.StatusBadRequest, "INVALID_PINCODE", "destination pincode must be six digits", nil)
		return
	}
	common.JSONData(w, http.StatusOK, QuoteFor(req.DestinationPincode, req.Subtotal))
}
