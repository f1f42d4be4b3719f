package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/buyonegram/backend-bog/internal/common"
)

var testSecret = []byte("unit-test-secret")

func signToken(t *testing.T, subject, role string, expiresIn time.Duration) string {
	t.Helper()
	builder := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(expiresIn))
	if role != "" {
		builder = builder.Claim("role", role)
	}
	tok, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, testSecret))
	require.NoError(t, err)
	return string(signed)
}

func echoUserHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := common.UserID(r.Context())
		_, _ = w.Write([]byte(userID))
	})
}

func TestVerifyValidToken(t *testing.T) {
	v := Verifier{Secret: testSecret}
	claims, err := v.Verify(signToken(t, "user-1", "admin", time.Hour), time.Now())
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "admin", claims.Role)
}

func TestVerifyExpiredToken(t *testing.T) {
	v := Verifier{Secret: testSecret}
	_, err := v.Verify(signToken(t, "user-1", "", -time.Hour), time.Now())
	require.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	v := Verifier{Secret: []byte("other-secret")}
	_, err := v.Verify(signToken(t, "user-1", "", time.Hour), time.Now())
	require.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	m := Middleware{Verifier: Verifier{Secret: testSecret}}
	handler := m.RequireAuth(echoUserHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", "", time.Hour))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	m := Middleware{Verifier: Verifier{Secret: testSecret}}
	handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/taxSettings", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", "", time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/admin/settings/taxSettings", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin-1", "admin", time.Hour))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
