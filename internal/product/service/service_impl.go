package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/payflowhq/payflow/internal/observability/metrics"
	paymentdomain "github.com/payflowhq/payflow/internal/payment/domain"
	"github.com/payflowhq/payflow/internal/payment/providers"
	"github.com/payflowhq/payflow/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Registry *providers.Registry
	Metrics  *metrics.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	registry *providers.Registry
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		registry: p.Registry,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.log.Info("product created",
		zap.String("product_id", p.ID.String()),
		zap.Int64("amount", p.Amount),
		zap.String("currency", p.Currency),
	)

	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

// SyncToProviders mirrors the product into the requested backends, defaulting
// to every registered one. Each backend is attempted independently and all
// successful ids are persisted in a single write after the pass, so one
// failing provider neither aborts the others nor erases ids they returned.
func (s *Service) SyncToProviders(ctx context.Context, id string, requested []string) (*domain.SyncResult, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	targets := requested
	if len(targets) == 0 {
		for _, method := range s.registry.Available() {
			targets = append(targets, string(method))
		}
	}

	result := &domain.SyncResult{
		Product:         toResponse(p),
		SuccessfulSyncs: []string{},
		FailedSyncs:     []domain.SyncFailure{},
	}
	refs := domain.ProviderRefs{}

	for _, raw := range targets {
		name := strings.ToLower(strings.TrimSpace(raw))
		method, err := paymentdomain.ParseMethod(name)
		if name == "" || err != nil {
			result.FailedSyncs = append(result.FailedSyncs, domain.SyncFailure{
				Provider: name,
				Error:    paymentdomain.ErrUnsupportedProvider.Error(),
			})
			continue
		}

		provider, err := s.registry.Get(method)
		if err != nil {
			result.FailedSyncs = append(result.FailedSyncs, domain.SyncFailure{
				Provider: string(method),
				Error:    err.Error(),
			})
			continue
		}

		productID, priceID, err := s.syncOne(ctx, provider, p)
		if err != nil {
			s.log.Warn("product sync failed",
				zap.String("product_id", p.ID.String()),
				zap.String("provider", string(method)),
				zap.Error(err),
			)
			result.FailedSyncs = append(result.FailedSyncs, domain.SyncFailure{
				Provider: string(method),
				Error:    err.Error(),
			})
			continue
		}

		switch method {
		case paymentdomain.MethodStripe:
			refs.StripeProductID = &productID
			refs.StripePriceID = &priceID
		case paymentdomain.MethodPayPal:
			refs.PayPalProductID = &productID
			refs.PayPalPriceID = &priceID
		default:
			result.FailedSyncs = append(result.FailedSyncs, domain.SyncFailure{
				Provider: string(method),
				Error:    "no catalog columns for provider",
			})
			continue
		}
		result.SuccessfulSyncs = append(result.SuccessfulSyncs, string(method))
	}

	if len(result.SuccessfulSyncs) > 0 {
		if err := s.repo.UpdateProviderRefs(ctx, s.db, p.ID.Int64(), refs); err != nil {
			return nil, err
		}
	}

	s.log.Info("product sync finished",
		zap.String("product_id", p.ID.String()),
		zap.Strings("succeeded", result.SuccessfulSyncs),
		zap.Int("failed", len(result.FailedSyncs)),
	)

	return result, nil
}

func (s *Service) syncOne(ctx context.Context, provider paymentdomain.Provider, p *domain.Product) (string, string, error) {
	name := string(provider.Name())

	product, err := provider.CreateProduct(ctx, p.Name, p.Description)
	s.metrics.RecordProviderCall(name, "create_product", err)
	if err != nil {
		return "", "", err
	}

	price, err := provider.CreatePrice(ctx, product.ID, p.Amount, p.Currency)
	s.metrics.RecordProviderCall(name, "create_price", err)
	if err != nil {
		return "", "", err
	}

	return product.ID, price.ID, nil
}

func (s *Service) GetSyncStatus(ctx context.Context, id string) (*domain.SyncStatusResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &domain.SyncStatusResponse{ID: p.ID.String()}
	for _, method := range s.registry.Available() {
		var productID, priceID *string
		switch method {
		case paymentdomain.MethodStripe:
			productID, priceID = p.StripeProductID, p.StripePriceID
		case paymentdomain.MethodPayPal:
			productID, priceID = p.PayPalProductID, p.PayPalPriceID
		}
		resp.Providers = append(resp.Providers, domain.ProviderSyncStatus{
			Provider:  string(method),
			Synced:    refSet(productID) && refSet(priceID),
			ProductID: productID,
			PriceID:   priceID,
		})
	}
	return resp, nil
}

func (s *Service) load(ctx context.Context, raw string) (*domain.Product, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	p, err := s.repo.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func refSet(ref *string) bool {
	return ref != nil && strings.TrimSpace(*ref) != ""
}

func toResponse(p *domain.Product) domain.Response {
	return domain.Response{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Amount:      p.Amount,
		Currency:    p.Currency,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
