package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/payflowhq/payflow/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, domain.ErrInvalidUser
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	now := time.Now().UTC()
	o := &domain.Order{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Amount:    req.Amount,
		Currency:  currency,
		Status:    domain.StatusPending,
		Metadata:  datatypes.JSONMap(req.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, o); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.Int64("amount", o.Amount),
		zap.String("currency", o.Currency),
	)

	resp := toResponse(o)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orderID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Response, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.FindByUser(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func toResponse(o *domain.Order) domain.Response {
	return domain.Response{
		ID:              o.ID.String(),
		Amount:          o.Amount,
		Currency:        o.Currency,
		Status:          o.Status,
		PaymentProvider: o.PaymentProvider,
		PaymentIntentID: o.PaymentIntentID,
		Metadata:        map[string]any(o.Metadata),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
