package settings_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/buyonegram/backend-bog/internal/settings"
)

func newRouter(store settings.Store) *chi.Mux {
	h := &settings.Handler{Store: store}
	r := chi.NewRouter()
	r.Get("/admin/settings/{key}", h.Get)
	r.Put("/admin/settings/{key}", h.Put)
	return r
}

func TestSettingsRoundTrip(t *testing.T) {
	r := newRouter(settings.NewMemoryStore())

	put := httptest.NewRequest(http.MethodPut, "/admin/settings/taxSettings", strings.NewReader(`{"gstRatePercent": 12}`))
	putRec := httptest.NewRecorder()
	r.ServeHTTP(putRec, put)
	require.Equal(t, http.StatusOK, putRec.Code)

	get := httptest.NewRequest(http.MethodGet, "/admin/settings/taxSettings", nil)
	getRec := httptest.NewRecorder()
	r.ServeHTTP(getRec, get)
	require.Equal(t, http.StatusOK, getRec.Code)

	var body struct {
		Data struct {
			Key   string          `json:"key"`
			Value json.RawMessage `json:"value"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &body))
	require.Equal(t, "taxSettings", body.Data.Key)
	require.JSONEq(t, `{"gstRatePercent": 12}`, string(body.Data.Value))
}

func TestSettingsUnknownKey(t *testing.T) {
	r := newRouter(settings.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/admin/settings/featureFlags", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	put := httptest.NewRequest(http.MethodPut, "/admin/settings/featureFlags", strings.NewReader(`{}`))
	putRec := httptest.NewRecorder()
	r.ServeHTTP(putRec, put)
	require.Equal(t, http.StatusNotFound, putRec.Code)
}

func TestSettingsNotConfigured(t *testing.T) {
	r := newRouter(settings.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/admin/settings/shippingSettings", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsRejectsInvalidJSON(t *testing.T) {
	r := newRouter(settings.NewMemoryStore())

	put := httptest.NewRequest(http.MethodPut, "/admin/settings/taxSettings", strings.NewReader(`{"broken`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, put)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
