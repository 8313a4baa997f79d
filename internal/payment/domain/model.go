// Package domain contains the provider-agnostic payment contract.
package domain

import (
	"context"
	"net/http"
	"strings"
)

// Method identifies a supported payment backend.
type Method string

const (
	MethodStripe Method = "stripe"
	MethodPayPal Method = "paypal"
)

// DefaultMethod is used when a caller does not pick a provider.
const DefaultMethod = MethodStripe

// ParseMethod normalizes a caller-supplied method name.
func ParseMethod(raw string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(raw))) {
	case MethodStripe:
		return MethodStripe, nil
	case MethodPayPal:
		return MethodPayPal, nil
	case "":
		return DefaultMethod, nil
	default:
		return "", ErrUnsupportedProvider
	}
}

// PaymentIntent is the provider-side object for a pull-model payment.
// Redirect-model providers return an approval URL instead of a client secret.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	ApprovalURL  string
}

// CheckoutSession is a provider-hosted redirect flow.
type CheckoutSession struct {
	ID  string
	URL string
}

// Refund is the provider-side result of a refund request.
type Refund struct {
	ID     string
	Status string
}

// CatalogProduct mirrors a local product into a provider.
type CatalogProduct struct {
	ID          string
	Name        string
	Description string
}

// CatalogPrice mirrors a local price into a provider.
type CatalogPrice struct {
	ID         string
	ProductID  string
	UnitAmount int64
	Currency   string
}

const (
	EventTypePaymentSucceeded  = "payment_succeeded"
	EventTypePaymentFailed     = "payment_failed"
	EventTypeCheckoutCompleted = "checkout_completed"
	EventTypeIgnored           = "ignored"
)

// Event is the canonical webhook event parsed by providers. PaymentID refers
// to the provider transaction id recorded on the order; checkout-completed
// events additionally carry the order id from metadata so the stored
// transaction id can be reconciled with the true payment id.
type Event struct {
	Type            string
	ProviderEventID string
	PaymentID       string
	OrderID         string
	RawType         string
}

// Provider is the capability contract every payment backend implements.
// Amounts cross this boundary in the smallest currency unit; each
// implementation owns its own unit conversion and request shaping.
type Provider interface {
	Name() Method

	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, amount int64, currency string, orderID string) (*CheckoutSession, error)
	CreateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*Refund, error)
	VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) (*Event, error)

	CreateProduct(ctx context.Context, name string, description string) (*CatalogProduct, error)
	CreatePrice(ctx context.Context, productID string, amount int64, currency string) (*CatalogPrice, error)
}
