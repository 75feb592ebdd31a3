// internal/api/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"churnshield/internal/common/auth"
	apperrors "churnshield/internal/common/errors"
	"churnshield/internal/common/logger"
	"churnshield/internal/models"
	"churnshield/internal/store"
)

var errNoDatabase = errors.New("database connection unavailable")

// UserSource is the subset of the user store the handler needs.
type UserSource interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type Request struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Handler serves POST /login.
type Handler struct {
	users       UserSource
	jwt         *auth.JWTManager
	demoAccount bool
	logger      logger.Logger
}

// NewHandler wires the login endpoint. users may be nil when the database is
// down; with demoAccount enabled the admin/admin123 fallback still works so
// the dashboard stays reachable.
func NewHandler(users UserSource, jwtManager *auth.JWTManager, demoAccount bool, log logger.Logger) *Handler {
	return &Handler{
		users:       users,
		jwt:         jwtManager,
		demoAccount: demoAccount,
		logger:      log.WithFields(map[string]interface{}{"endpoint": "login"}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.NewInvalidInputError("request body is not valid JSON"))
		return
	}

	if h.users == nil {
		if h.demoAccount && req.Username == "admin" && req.Password == "admin123" {
			h.respond(w, "admin", "Admin User")
			return
		}
		apperrors.WriteHTTP(w, apperrors.NewDatabaseConnectionFailedError(errNoDatabase))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			apperrors.WriteHTTP(w, apperrors.NewInvalidCredentialsError())
			return
		}
		h.logger.Error("user lookup failed", map[string]interface{}{"error": err})
		apperrors.WriteHTTP(w, err)
		return
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		h.logger.Warn("failed login attempt", map[string]interface{}{"username": req.Username})
		apperrors.WriteHTTP(w, apperrors.NewInvalidCredentialsError())
		return
	}

	h.respond(w, user.Username, user.FullName)
}

func (h *Handler) respond(w http.ResponseWriter, username, fullName string) {
	token, err := h.jwt.Issue(username, fullName)
	if err != nil {
		h.logger.Error("token issuance failed", map[string]interface{}{"error": err})
		apperrors.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.LoginResponse{
		AccessToken: token,
		Username:    username,
		FullName:    fullName,
	})
}
