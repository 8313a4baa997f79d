// Package domain contains core types for orders.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the order lifecycle state. Transitions are monotonic along the
// payment state machine; status never regresses from a terminal payment
// outcome.
type Status string

const (
	StatusPending                Status = "pending"
	StatusPaymentIntentCreated   Status = "PAYMENT_INTENT_CREATED"
	StatusCheckoutSessionCreated Status = "CHECKOUT_SESSION_CREATED"
	StatusPaymentSucceeded       Status = "PAYMENT_SUCCEEDED"
	StatusPaymentFailed          Status = "PAYMENT_FAILED"
	StatusRefundRequested        Status = "REFUND_REQUESTED"
)

// Order is the persistent payment record for a purchase. Amount is in the
// smallest currency unit and immutable after creation. Orders are never
// deleted; they are retained for audit.
type Order struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID          snowflake.ID `json:"user_id" gorm:"column:user_id;not null;index"`
	Amount          int64        `json:"amount" gorm:"not null"`
	Currency        string       `json:"currency" gorm:"type:text;not null"`
	Status          Status       `json:"status" gorm:"type:text;not null"`
	PaymentProvider string       `json:"payment_provider" gorm:"column:payment_provider;type:text"`
	PaymentIntentID *string      `json:"payment_intent_id,omitempty" gorm:"column:payment_intent_id;type:text;index"`
	PaymentMethodID *string      `json:"payment_method_id,omitempty" gorm:"column:payment_method_id;type:text"`

	// Metadata carries caller-supplied key/value pairs, echoed to providers.
	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"column:metadata"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }
