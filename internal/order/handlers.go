package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buyonegram/backend-bog/internal/common"
	"github.com/buyonegram/backend-bog/internal/obs"
)

// Handler serves customer-facing order endpoints. Responses always go
// through NormalizeForResponse so clients never see the raw legacy fields.
type Handler struct {
	Repo Repository
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	if perPage > 100 {
		perPage = 100
	}
	docs, total, err := h.Repo.ListByUser(r.Context(), userID, perPage, (page-1)*perPage)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	response := make([]Normalized, 0, len(docs))
	for _, doc := range docs {
		response = append(response, NormalizeForResponse(doc))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": response,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	doc, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	if doc.UserID != "" && doc.UserID != userID {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": NormalizeForResponse(doc)})
}

// AdminHandler serves order administration endpoints.
type AdminHandler struct {
	Repo Repository
}

type statusUpdateInput struct {
	Status string `json:"status"`
}

// UpdateStatus transitions an order through the lifecycle state machine.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	var payload statusUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	doc, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	result := ApplyTransition(&doc, NormalizeStatus(payload.Status), "ADMIN", time.Now().UTC())
	if obs.OrderTransitionTotal != nil {
		outcome := result.Reason
		if result.Updated {
			outcome = "updated"
		}
		obs.OrderTransitionTotal.WithLabelValues("admin", outcome).Inc()
	}
	if !result.Updated {
		common.JSONError(w, http.StatusConflict, "INVALID_TRANSITION", "status transition rejected", map[string]any{
			"reason": result.Reason,
			"from":   doc.OrderStatus,
		})
		return
	}
	if err := h.Repo.Update(r.Context(), doc); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to persist order", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": NormalizeForResponse(doc)})
}
