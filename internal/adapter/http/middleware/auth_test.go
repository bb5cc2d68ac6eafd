package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgerbook/internal/infrastructure/auth"
)

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewJWTManager("test-secret")
	token, err := manager.Generate("alice", auth.RoleViewer, time.Minute)
	require.NoError(t, err)

	var seen *Principal
	handler := AuthMiddleware(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/401000/ledger", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "alice", seen.Subject)
	assert.Equal(t, auth.RoleViewer, seen.Role)
}

func TestRequireWriter(t *testing.T) {
	manager := auth.NewJWTManager("test-secret")
	viewer, err := manager.Generate("v", auth.RoleViewer, time.Minute)
	require.NoError(t, err)
	accountant, err := manager.Generate("a", auth.RoleAccountant, time.Minute)
	require.NoError(t, err)

	handler := AuthMiddleware(manager)(RequireWriter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	serve := func(method, token string) int {
		req := httptest.NewRequest(method, "/api/v1/pieces", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, viewer))
	assert.Equal(t, http.StatusForbidden, serve(http.MethodPost, viewer))
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, accountant))
	assert.Equal(t, http.StatusOK, serve(http.MethodDelete, accountant))
}
