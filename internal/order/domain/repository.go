package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists orders. Status-changing updates are conditional on the
// current status so concurrent webhook deliveries and caller actions cannot
// regress the state machine; they report whether a row was claimed instead of
// failing.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	FindByIntentID(ctx context.Context, db *gorm.DB, intentID string) (*Order, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID int64) ([]Order, error)

	// RecordProviderRef stores the provider and its transaction ids and moves
	// the order to status, provided the current status is in allowed.
	RecordProviderRef(ctx context.Context, db *gorm.DB, id int64, provider string, intentID, methodID string, status Status, allowed ...Status) (bool, error)

	// UpdateStatusByID moves the order to status if its current status is in
	// allowed. Returns false when no row matched.
	UpdateStatusByID(ctx context.Context, db *gorm.DB, id int64, status Status, allowed ...Status) (bool, error)

	// UpdateStatusByIntentID is UpdateStatusByID keyed by the provider
	// transaction id.
	UpdateStatusByIntentID(ctx context.Context, db *gorm.DB, intentID string, status Status, allowed ...Status) (bool, error)

	// ReconcileCheckout marks the order paid and overwrites the stored
	// transaction ids with the true payment id delivered by the webhook.
	ReconcileCheckout(ctx context.Context, db *gorm.DB, id int64, paymentID string, allowed ...Status) (bool, error)
}
