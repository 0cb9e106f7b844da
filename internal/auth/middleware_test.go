package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedHandler(t *testing.T, m *JWTManager) http.Handler {
	t.Helper()
	return Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		require.NotNil(t, claims)
		assert.Equal(t, claims.UserID, UserIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))
}

func authCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	m := testManager()
	token, err := m.GenerateToken(7, "jdoe", false)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/devices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedHandler(t, m).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewareRejections(t *testing.T) {
	m := testManager()

	expired := NewJWTManager(testSecret, "asset-tracker-api", "asset-tracker-api", -time.Minute)
	expiredToken, err := expired.GenerateToken(7, "jdoe", false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "MISSING_AUTH_HEADER"},
		{"not bearer", "Basic abc123", "INVALID_AUTH_FORMAT"},
		{"empty token", "Bearer ", "MISSING_TOKEN"},
		{"garbage token", "Bearer not.a.token", "INVALID_TOKEN"},
		{"expired token", "Bearer " + expiredToken, "TOKEN_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/devices", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedHandler(t, m).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, authCode(t, w))
		})
	}
}

func TestContextHelpersWithoutAuth(t *testing.T) {
	req := httptest.NewRequest("GET", "/devices", nil)
	assert.Nil(t, ClaimsFromContext(req.Context()))
	assert.Zero(t, UserIDFromContext(req.Context()))
}
