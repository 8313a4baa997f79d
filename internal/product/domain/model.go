// Package domain contains core types for the product catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Product is a locally owned catalog entry. The provider id columns record
// the mirrored product and price per payment backend; a pair of NULLs means
// that backend has not been synced yet.
type Product struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Amount      int64        `json:"amount" gorm:"not null"`
	Currency    string       `json:"currency" gorm:"type:text;not null"`

	StripeProductID *string `json:"stripe_product_id,omitempty" gorm:"column:stripe_product_id;type:text"`
	StripePriceID   *string `json:"stripe_price_id,omitempty" gorm:"column:stripe_price_id;type:text"`
	PayPalProductID *string `json:"paypal_product_id,omitempty" gorm:"column:paypal_product_id;type:text"`
	PayPalPriceID   *string `json:"paypal_price_id,omitempty" gorm:"column:paypal_price_id;type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
