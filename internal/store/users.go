// internal/store/users.go
package store

import (
	"context"
	"database/sql"
	"errors"

	apperrors "churnshield/internal/common/errors"
	"churnshield/internal/models"
)

// ErrUserNotFound is returned when no user row matches the username.
var ErrUserNotFound = errors.New("user not found")

// UserStore reads and writes dashboard accounts.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByUsername fetches one user row.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password, full_name
		FROM users
		WHERE username = $1`, username)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.NewQueryExecutionFailedError("get-user", err)
	}
	return &u, nil
}

// Create inserts a new user row with an already-hashed password.
func (s *UserStore) Create(ctx context.Context, username, passwordHash, fullName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, full_name)
		VALUES ($1, $2, $3)`, username, passwordHash, fullName)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("create-user", err)
	}
	return nil
}

// Exists reports whether a username is already taken.
func (s *UserStore) Exists(ctx context.Context, username string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, username)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, apperrors.NewQueryExecutionFailedError("user-exists", err)
	}
	return count > 0, nil
}
