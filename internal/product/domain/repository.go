package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Product, error)

	// UpdateProviderRefs persists whichever provider id pairs are non-nil.
	// A sync pass writes all successful pairs in one statement so a partial
	// provider failure never erases another provider's ids.
	UpdateProviderRefs(ctx context.Context, db *gorm.DB, id int64, refs ProviderRefs) error
}

// ProviderRefs carries mirrored catalog ids to persist. Nil fields are left
// untouched.
type ProviderRefs struct {
	StripeProductID *string
	StripePriceID   *string
	PayPalProductID *string
	PayPalPriceID   *string
}
