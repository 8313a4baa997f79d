package repository

import (
	"context"
	"time"

	"github.com/payflowhq/payflow/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, name, description, amount, currency, stripe_product_id, stripe_price_id, paypal_product_id, paypal_price_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Name,
		product.Description,
		product.Amount,
		product.Currency,
		product.StripeProductID,
		product.StripePriceID,
		product.PayPalProductID,
		product.PayPalPriceID,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, amount, currency, stripe_product_id, stripe_price_id, paypal_product_id, paypal_price_id, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, amount, currency, stripe_product_id, stripe_price_id, paypal_product_id, paypal_price_id, created_at, updated_at
		 FROM products ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateProviderRefs(ctx context.Context, db *gorm.DB, id int64, refs domain.ProviderRefs) error {
	sets := "updated_at = ?"
	args := []any{time.Now().UTC()}

	if refs.StripeProductID != nil {
		sets += ", stripe_product_id = ?"
		args = append(args, *refs.StripeProductID)
	}
	if refs.StripePriceID != nil {
		sets += ", stripe_price_id = ?"
		args = append(args, *refs.StripePriceID)
	}
	if refs.PayPalProductID != nil {
		sets += ", paypal_product_id = ?"
		args = append(args, *refs.PayPalProductID)
	}
	if refs.PayPalPriceID != nil {
		sets += ", paypal_price_id = ?"
		args = append(args, *refs.PayPalPriceID)
	}

	args = append(args, id)
	return db.WithContext(ctx).Exec(
		`UPDATE products SET `+sets+` WHERE id = ?`,
		args...,
	).Error
}
