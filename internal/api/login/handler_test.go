// internal/api/login/handler_test.go
package login

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnshield/internal/common/auth"
	"churnshield/internal/common/config"
	"churnshield/internal/common/logger"
	"churnshield/internal/models"
	"churnshield/internal/store"
)

type fakeUserSource struct {
	users map[string]*models.User
}

func (f *fakeUserSource) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 5, Issuer: "test"})
}

func postLogin(h *Handler, username, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(Request{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	source := &fakeUserSource{users: map[string]*models.User{
		"admin": {ID: 1, Username: "admin", PasswordHash: hash, FullName: "Admin User"},
	}}
	jwtManager := testJWT()
	h := NewHandler(source, jwtManager, false, logger.NewTestLogger(t))

	w := postLogin(h, "admin", "s3cret")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "admin", resp.Username)
	assert.Equal(t, "Admin User", resp.FullName)

	claims, err := jwtManager.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	source := &fakeUserSource{users: map[string]*models.User{
		"admin": {Username: "admin", PasswordHash: hash},
	}}
	h := NewHandler(source, testJWT(), false, logger.NewTestLogger(t))

	w := postLogin(h, "admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestLogin_UnknownUser(t *testing.T) {
	h := NewHandler(&fakeUserSource{}, testJWT(), false, logger.NewTestLogger(t))

	w := postLogin(h, "ghost", "whatever")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_DemoAccountFallback(t *testing.T) {
	h := NewHandler(nil, testJWT(), true, logger.NewTestLogger(t))

	w := postLogin(h, "admin", "admin123")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogin_NoDatabaseNoDemo(t *testing.T) {
	h := NewHandler(nil, testJWT(), false, logger.NewTestLogger(t))

	w := postLogin(h, "admin", "admin123")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogin_DemoFallbackRejectsWrongPassword(t *testing.T) {
	h := NewHandler(nil, testJWT(), true, logger.NewTestLogger(t))

	w := postLogin(h, "admin", "nope")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogin_MalformedBody(t *testing.T) {
	h := NewHandler(&fakeUserSource{}, testJWT(), false, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	h := NewHandler(&fakeUserSource{}, testJWT(), false, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
