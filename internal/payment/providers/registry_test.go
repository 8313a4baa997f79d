package providers

import (
	"context"
	"net/http"
	"testing"

	"github.com/payflowhq/payflow/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider struct {
	method domain.Method
}

func (p *namedProvider) Name() domain.Method { return p.method }

func (p *namedProvider) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	return nil, nil
}

func (p *namedProvider) CreateCheckoutSession(ctx context.Context, amount int64, currency string, orderID string) (*domain.CheckoutSession, error) {
	return nil, nil
}

func (p *namedProvider) CreateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*domain.Refund, error) {
	return nil, nil
}

func (p *namedProvider) VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) (*domain.Event, error) {
	return nil, nil
}

func (p *namedProvider) CreateProduct(ctx context.Context, name, description string) (*domain.CatalogProduct, error) {
	return nil, nil
}

func (p *namedProvider) CreatePrice(ctx context.Context, productID string, amount int64, currency string) (*domain.CatalogPrice, error) {
	return nil, nil
}

func TestRegistryGet(t *testing.T) {
	stripe := &namedProvider{method: domain.MethodStripe}
	r := NewRegistry(stripe)

	got, err := r.Get(domain.MethodStripe)
	require.NoError(t, err)
	assert.Same(t, stripe, got)

	_, err = r.Get(domain.MethodPayPal)
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}

func TestRegistryAvailableKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry(
		&namedProvider{method: domain.MethodStripe},
		&namedProvider{method: domain.MethodPayPal},
	)
	assert.Equal(t, []domain.Method{domain.MethodStripe, domain.MethodPayPal}, r.Available())
}

func TestRegistryDedupesByMethod(t *testing.T) {
	first := &namedProvider{method: domain.MethodStripe}
	second := &namedProvider{method: domain.MethodStripe}
	r := NewRegistry(first, second)

	require.Len(t, r.Available(), 1)
	got, err := r.Get(domain.MethodStripe)
	require.NoError(t, err)
	assert.Same(t, first, got)
}
