package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedProvider     = errors.New("unsupported_provider")
	ErrInvalidOrderState       = errors.New("invalid_order_state")
	ErrMissingPaymentReference = errors.New("missing_payment_reference")
	ErrProviderMismatch        = errors.New("provider_mismatch")
	ErrWebhookVerification     = errors.New("webhook_verification_failed")
	ErrRefundFailed            = errors.New("refund_failed")
)

// ProviderError wraps a failure from an external payment backend with the
// provider and operation it came from.
type ProviderError struct {
	Provider Method
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider Method, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// IsProviderError reports whether err originated from a payment backend.
func IsProviderError(err error) bool {
	var pErr *ProviderError
	return errors.As(err, &pErr)
}
