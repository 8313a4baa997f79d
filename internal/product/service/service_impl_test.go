package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	paymentdomain "github.com/payflowhq/payflow/internal/payment/domain"
	"github.com/payflowhq/payflow/internal/payment/providers"
	"github.com/payflowhq/payflow/internal/product/domain"
	"github.com/payflowhq/payflow/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// catalogStub covers the catalog half of the provider contract; payment
// operations are never reached by this service.
type catalogStub struct {
	method     paymentdomain.Method
	productErr error
	priceErr   error
}

func (s *catalogStub) Name() paymentdomain.Method { return s.method }

func (s *catalogStub) CreateProduct(ctx context.Context, name, description string) (*paymentdomain.CatalogProduct, error) {
	if s.productErr != nil {
		return nil, s.productErr
	}
	return &paymentdomain.CatalogProduct{ID: string(s.method) + "_prod_1", Name: name}, nil
}

func (s *catalogStub) CreatePrice(ctx context.Context, productID string, amount int64, currency string) (*paymentdomain.CatalogPrice, error) {
	if s.priceErr != nil {
		return nil, s.priceErr
	}
	return &paymentdomain.CatalogPrice{ID: string(s.method) + "_price_1", ProductID: productID, UnitAmount: amount, Currency: currency}, nil
}

func (s *catalogStub) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*paymentdomain.PaymentIntent, error) {
	return nil, errors.New("not implemented")
}

func (s *catalogStub) CreateCheckoutSession(ctx context.Context, amount int64, currency string, orderID string) (*paymentdomain.CheckoutSession, error) {
	return nil, errors.New("not implemented")
}

func (s *catalogStub) CreateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*paymentdomain.Refund, error) {
	return nil, errors.New("not implemented")
}

func (s *catalogStub) VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) (*paymentdomain.Event, error) {
	return nil, errors.New("not implemented")
}

type fixture struct {
	svc    domain.Service
	db     *gorm.DB
	repo   domain.Repository
	stripe *catalogStub
	paypal *catalogStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		db:     db,
		repo:   repository.Provide(),
		stripe: &catalogStub{method: paymentdomain.MethodStripe},
		paypal: &catalogStub{method: paymentdomain.MethodPayPal},
	}
	f.svc = New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     f.repo,
		Registry: providers.NewRegistry(f.stripe, f.paypal),
	})
	return f
}

func (f *fixture) createProduct(t *testing.T) *domain.Response {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Name:        "Standing Desk",
		Description: "Height adjustable",
		Amount:      49900,
		Currency:    "USD",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)

	resp := f.createProduct(t)
	assert.Equal(t, "Standing Desk", resp.Name)
	assert.Equal(t, int64(49900), resp.Amount)
	assert.Equal(t, "usd", resp.Currency)

	got, err := f.svc.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRequest{Name: "  ", Amount: 100, Currency: "usd"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "Desk", Amount: 0, Currency: "usd"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "Desk", Amount: 100, Currency: "dollars"})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestGetProductNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "999999999999999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Get(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestSyncToProvidersAllSucceed(t *testing.T) {
	f := newFixture(t)
	resp := f.createProduct(t)

	result, err := f.svc.SyncToProviders(context.Background(), resp.ID, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"stripe", "paypal"}, result.SuccessfulSyncs)
	assert.Empty(t, result.FailedSyncs)

	status, err := f.svc.GetSyncStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	for _, p := range status.Providers {
		assert.True(t, p.Synced, p.Provider)
	}
}

func TestSyncToProvidersIsolatesFailure(t *testing.T) {
	f := newFixture(t)
	f.paypal.priceErr = errors.New("rate limited")
	resp := f.createProduct(t)

	result, err := f.svc.SyncToProviders(context.Background(), resp.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"stripe"}, result.SuccessfulSyncs)
	require.Len(t, result.FailedSyncs, 1)
	assert.Equal(t, "paypal", result.FailedSyncs[0].Provider)
	assert.Contains(t, result.FailedSyncs[0].Error, "rate limited")

	// The surviving provider's ids are persisted.
	status, err := f.svc.GetSyncStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	for _, p := range status.Providers {
		switch p.Provider {
		case "stripe":
			assert.True(t, p.Synced)
			require.NotNil(t, p.ProductID)
			assert.Equal(t, "stripe_prod_1", *p.ProductID)
		case "paypal":
			assert.False(t, p.Synced)
		}
	}
}

func TestSyncToProvidersAllFail(t *testing.T) {
	f := newFixture(t)
	f.stripe.productErr = errors.New("boom")
	f.paypal.productErr = errors.New("boom")
	resp := f.createProduct(t)

	result, err := f.svc.SyncToProviders(context.Background(), resp.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, result.SuccessfulSyncs)
	assert.Len(t, result.FailedSyncs, 2)

	status, err := f.svc.GetSyncStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	for _, p := range status.Providers {
		assert.False(t, p.Synced, p.Provider)
	}
}

func TestSyncToRequestedSubset(t *testing.T) {
	f := newFixture(t)
	resp := f.createProduct(t)

	result, err := f.svc.SyncToProviders(context.Background(), resp.ID, []string{"paypal"})
	require.NoError(t, err)
	assert.Equal(t, []string{"paypal"}, result.SuccessfulSyncs)
	assert.Empty(t, result.FailedSyncs)

	status, err := f.svc.GetSyncStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	for _, p := range status.Providers {
		assert.Equal(t, p.Provider == "paypal", p.Synced, p.Provider)
	}
}

func TestSyncUnknownProviderRecordedAsFailure(t *testing.T) {
	f := newFixture(t)
	resp := f.createProduct(t)

	result, err := f.svc.SyncToProviders(context.Background(), resp.ID, []string{"stripe", "venmo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"stripe"}, result.SuccessfulSyncs)
	require.Len(t, result.FailedSyncs, 1)
	assert.Equal(t, "venmo", result.FailedSyncs[0].Provider)
}

func TestSyncIsRepeatable(t *testing.T) {
	f := newFixture(t)
	f.paypal.productErr = errors.New("temporarily unavailable")
	resp := f.createProduct(t)

	_, err := f.svc.SyncToProviders(context.Background(), resp.ID, nil)
	require.NoError(t, err)

	// Retrying after the outage fills in the missing provider without
	// disturbing the one already synced.
	f.paypal.productErr = nil
	result, err := f.svc.SyncToProviders(context.Background(), resp.ID, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"stripe", "paypal"}, result.SuccessfulSyncs)

	status, err := f.svc.GetSyncStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	for _, p := range status.Providers {
		assert.True(t, p.Synced, p.Provider)
	}
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t)
	f.createProduct(t)

	items, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
