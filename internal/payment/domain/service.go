package domain

import (
	"context"
	"net/http"
)

// Service orchestrates payments across providers on top of the order state
// machine.
type Service interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	RequestRefund(ctx context.Context, req RefundRequest) (*RefundResponse, error)
	HandleWebhook(ctx context.Context, method Method, payload []byte, headers http.Header) (*WebhookResult, error)
	AvailableMethods() []Method
}

type IntentRequest struct {
	OrderID string `json:"orderId"`
	Method  string `json:"paymentMethod"`
}

type IntentResponse struct {
	OrderID      string `json:"order_id"`
	Provider     Method `json:"provider"`
	IntentID     string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	ApprovalURL  string `json:"approval_url,omitempty"`
	Status       string `json:"status"`
}

type CheckoutRequest struct {
	OrderID string `json:"orderId"`
	Method  string `json:"paymentMethod"`
}

type CheckoutResponse struct {
	OrderID   string `json:"order_id"`
	Provider  Method `json:"provider"`
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	Status    string `json:"status"`
}

type RefundRequest struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

type RefundResponse struct {
	OrderID      string `json:"order_id"`
	Provider     Method `json:"provider"`
	RefundID     string `json:"refund_id"`
	RefundStatus string `json:"refund_status"`
	Status       string `json:"status"`
}

// WebhookResult reports what a delivery did. Applied is false for ignored
// events and for redeliveries that matched no transitionable order.
type WebhookResult struct {
	EventType string `json:"event_type"`
	Applied   bool   `json:"applied"`
}
