package dto

import "time"

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse describes an authenticated user.
type UserResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"nombre"`
	Email  string `json:"email"`
	Role   string `json:"rol"`
	RoleOK bool   `json:"rol_reconocido"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"usuario"`
}
