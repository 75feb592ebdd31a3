// internal/models/user.go
package models

// User is a dashboard account stored in the users table.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
}

// LoginResponse is returned by the login endpoint on success.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
}
