package repository

import (
	"context"
	"time"

	"github.com/payflowhq/payflow/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (id, user_id, amount, currency, status, payment_provider, payment_intent_id, payment_method_id, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.UserID,
		order.Amount,
		order.Currency,
		order.Status,
		order.PaymentProvider,
		order.PaymentIntentID,
		order.PaymentMethodID,
		order.Metadata,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount, currency, status, payment_provider, payment_intent_id, payment_method_id, metadata, created_at, updated_at
		 FROM orders WHERE id = ?`,
		id,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) FindByIntentID(ctx context.Context, db *gorm.DB, intentID string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount, currency, status, payment_provider, payment_intent_id, payment_method_id, metadata, created_at, updated_at
		 FROM orders WHERE payment_intent_id = ?`,
		intentID,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Order, error) {
	var items []domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount, currency, status, payment_provider, payment_intent_id, payment_method_id, metadata, created_at, updated_at
		 FROM orders WHERE user_id = ? ORDER BY created_at ASC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) RecordProviderRef(ctx context.Context, db *gorm.DB, id int64, provider string, intentID, methodID string, status domain.Status, allowed ...domain.Status) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payment_provider = ?, payment_intent_id = ?, payment_method_id = ?, status = ?, updated_at = ?
		 WHERE id = ? AND status IN ?`,
		provider,
		intentID,
		methodID,
		status,
		time.Now().UTC(),
		id,
		statusValues(allowed),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) UpdateStatusByID(ctx context.Context, db *gorm.DB, id int64, status domain.Status, allowed ...domain.Status) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status IN ?`,
		status,
		time.Now().UTC(),
		id,
		statusValues(allowed),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) UpdateStatusByIntentID(ctx context.Context, db *gorm.DB, intentID string, status domain.Status, allowed ...domain.Status) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE payment_intent_id = ? AND status IN ?`,
		status,
		time.Now().UTC(),
		intentID,
		statusValues(allowed),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ReconcileCheckout(ctx context.Context, db *gorm.DB, id int64, paymentID string, allowed ...domain.Status) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET status = ?, payment_intent_id = ?, payment_method_id = ?, updated_at = ?
		 WHERE id = ? AND status IN ?`,
		domain.StatusPaymentSucceeded,
		paymentID,
		paymentID,
		time.Now().UTC(),
		id,
		statusValues(allowed),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func statusValues(statuses []domain.Status) []string {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return values
}
