package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, userID string) ([]Response, error)
}

type CreateRequest struct {
	UserID   string
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Metadata map[string]any `json:"metadata"`
}

type Response struct {
	ID              string         `json:"id"`
	Amount          int64          `json:"amount"`
	Currency        string         `json:"currency"`
	Status          Status         `json:"status"`
	PaymentProvider string         `json:"payment_provider,omitempty"`
	PaymentIntentID *string        `json:"payment_intent_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

var (
	ErrNotFound        = errors.New("order_not_found")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidUser     = errors.New("invalid_user")
)
