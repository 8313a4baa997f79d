package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context) ([]Response, error)

	// SyncToProviders mirrors the product into the requested payment backends,
	// or into every configured backend when none are named. Provider failures
	// are isolated per backend and reported in the result instead of aborting
	// the pass.
	SyncToProviders(ctx context.Context, id string, providers []string) (*SyncResult, error)

	// GetSyncStatus reports, per backend, whether both the product and price
	// ids are recorded.
	GetSyncStatus(ctx context.Context, id string) (*SyncStatusResponse, error)
}

type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SyncRequest optionally narrows a sync pass to the named providers.
type SyncRequest struct {
	Providers []string `json:"providers"`
}

// SyncFailure records one provider that could not be synced.
type SyncFailure struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

type SyncResult struct {
	Product         Response      `json:"product"`
	SuccessfulSyncs []string      `json:"successful_syncs"`
	FailedSyncs     []SyncFailure `json:"failed_syncs"`
}

// ProviderSyncStatus is the per-backend view of mirrored ids.
type ProviderSyncStatus struct {
	Provider  string  `json:"provider"`
	Synced    bool    `json:"synced"`
	ProductID *string `json:"product_id,omitempty"`
	PriceID   *string `json:"price_id,omitempty"`
}

type SyncStatusResponse struct {
	ID        string               `json:"id"`
	Providers []ProviderSyncStatus `json:"providers"`
}

var (
	ErrNotFound        = errors.New("product_not_found")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCurrency = errors.New("invalid_currency")
)
