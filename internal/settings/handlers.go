package settings

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buyonegram/backend-bog/internal/common"
)

var allowedKeys = map[string]bool{
	KeyTaxSettings:      true,
	KeyShippingSettings: true,
}

// Handler exposes the admin settings surface.
type Handler struct {
	Store Store
}

// Get returns the stored document for the key, or 404.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !allowedKeys[key] {
		common.JSONError(w, http.StatusNotFound, "SETTING_UNKNOWN", "unknown settings key", nil)
		return
	}
	raw, err := h.Store.Get(r.Context(), key)
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "SETTING_NOT_FOUND", "setting not configured", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "SETTINGS_READ_FAILED", "could not read setting", nil)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"key": key, "value": json.RawMessage(raw)})
}

// Put replaces the stored document for the key.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !allowedKeys[key] {
		common.JSONError(w, http.StatusNotFound, "SETTING_UNKNOWN", "unknown settings key", nil)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || !json.Valid(body) {
		common.JSONError(w, http.StatusBadRequest, "SETTING_INVALID_JSON", "body must be a json document", nil)
		return
	}
	if err := h.Store.Set(r.Context(), key, body); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "SETTINGS_WRITE_FAILED", "could not persist setting", nil)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"key": key, "updated": true})
}
