package models

import "time"

// Credential is the bearer token returned by a successful login. The client
// treats the token as opaque; expiry is a hint only and is never enforced
// locally (the backend rejecting a request is the sole expiry signal).
type Credential struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegistrationRequest represents registration request payload. Length and
// complexity rules are the backend's business; the client only rejects
// obviously unusable input.
type RegistrationRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"` // backend defaults to "analyst"
}

// User is the authenticated principal. Owned by the backend, read-only here.
type User struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}
