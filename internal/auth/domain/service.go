package domain

import (
	"context"
	"time"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error

	// Authenticate resolves a raw session token to a live session and bumps
	// its last-seen time.
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LoginResult carries the raw token exactly once, for the cookie.
type LoginResult struct {
	User      UserResponse `json:"user"`
	RawToken  string       `json:"-"`
	ExpiresAt time.Time    `json:"expires_at"`
}
