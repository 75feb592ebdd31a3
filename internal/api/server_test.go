// internal/api/server_test.go
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnshield/internal/common/auth"
	"churnshield/internal/common/config"
	"churnshield/internal/common/logger"
)

func testDeps() Dependencies {
	return Dependencies{
		JWT: auth.NewJWTManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 5, Issuer: "test"}),
	}
}

func newTestServer(t *testing.T) (*Server, Dependencies) {
	deps := testDeps()
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, deps, logger.NewTestLogger(t))
	return srv, deps
}

func TestHealthEndpoint_DegradedWithoutModel(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, false, body["model_loaded"])
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/predict", "/logs", "/stats"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.srv.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s must require a token", path)
	}
}

func TestOpenEndpointsSkipAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/features", "/metrics", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.srv.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "%s must be reachable without a token", path)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	srv, deps := newTestServer(t)

	token, err := deps.JWT.Issue("admin", "Admin User")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, req)

	// store is nil, so the handler itself fails, but the token was accepted
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
}

func TestAuthMiddleware_AttachesClaims(t *testing.T) {
	jwtManager := auth.NewJWTManager(config.AuthConfig{JWTSecret: "s", TokenTTL: 5})
	token, err := jwtManager.Issue("analyst", "Data Analyst")
	require.NoError(t, err)

	var seen *auth.Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	withAuth(jwtManager, inner).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "analyst", seen.Username)
}
