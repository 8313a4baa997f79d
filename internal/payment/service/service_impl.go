// Package service implements the payment orchestrator. It is the only code
// that drives the order state machine from payment activity; providers never
// touch order rows and handlers never touch providers directly.
package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/payflowhq/payflow/internal/observability/metrics"
	orderdomain "github.com/payflowhq/payflow/internal/order/domain"
	"github.com/payflowhq/payflow/internal/payment/domain"
	"github.com/payflowhq/payflow/internal/payment/providers"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// startable are the statuses from which a provider flow may be (re)created.
// Re-creating an intent before any payment settles is allowed so a user can
// retry or switch between intent and hosted checkout.
var startable = []orderdomain.Status{
	orderdomain.StatusPending,
	orderdomain.StatusPaymentIntentCreated,
	orderdomain.StatusCheckoutSessionCreated,
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Registry *providers.Registry
	Metrics  *metrics.Metrics
	Orders   orderdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	registry *providers.Registry
	metrics  *metrics.Metrics
	orders   orderdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		registry: p.Registry,
		metrics:  p.Metrics,
		orders:   p.Orders,
	}
}

func (s *Service) AvailableMethods() []domain.Method {
	return s.registry.Available()
}

func (s *Service) CreatePaymentIntent(ctx context.Context, req domain.IntentRequest) (*domain.IntentResponse, error) {
	order, provider, err := s.startFlow(ctx, req.OrderID, req.Method)
	if err != nil {
		return nil, err
	}

	intent, err := provider.CreatePaymentIntent(ctx, order.Amount, order.Currency, map[string]string{
		"orderId": order.ID.String(),
	})
	s.metrics.RecordProviderCall(string(provider.Name()), "create_payment_intent", err)
	if err != nil {
		return nil, err
	}

	claimed, err := s.orders.RecordProviderRef(ctx, s.db, order.ID.Int64(),
		string(provider.Name()), intent.ID, intent.ID,
		orderdomain.StatusPaymentIntentCreated, startable...)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrInvalidOrderState
	}

	s.log.Info("payment intent created",
		zap.String("order_id", order.ID.String()),
		zap.String("provider", string(provider.Name())),
		zap.String("intent_id", intent.ID),
	)

	return &domain.IntentResponse{
		OrderID:      order.ID.String(),
		Provider:     provider.Name(),
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		ApprovalURL:  intent.ApprovalURL,
		Status:       string(orderdomain.StatusPaymentIntentCreated),
	}, nil
}

func (s *Service) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	order, provider, err := s.startFlow(ctx, req.OrderID, req.Method)
	if err != nil {
		return nil, err
	}

	session, err := provider.CreateCheckoutSession(ctx, order.Amount, order.Currency, order.ID.String())
	s.metrics.RecordProviderCall(string(provider.Name()), "create_checkout_session", err)
	if err != nil {
		return nil, err
	}

	claimed, err := s.orders.RecordProviderRef(ctx, s.db, order.ID.Int64(),
		string(provider.Name()), session.ID, session.ID,
		orderdomain.StatusCheckoutSessionCreated, startable...)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrInvalidOrderState
	}

	s.log.Info("checkout session created",
		zap.String("order_id", order.ID.String()),
		zap.String("provider", string(provider.Name())),
		zap.String("session_id", session.ID),
	)

	return &domain.CheckoutResponse{
		OrderID:   order.ID.String(),
		Provider:  provider.Name(),
		SessionID: session.ID,
		URL:       session.URL,
		Status:    string(orderdomain.StatusCheckoutSessionCreated),
	}, nil
}

// startFlow loads the order and resolves the provider for a new payment flow,
// enforcing the startable statuses and the one-provider-per-order rule.
func (s *Service) startFlow(ctx context.Context, orderID, rawMethod string) (*orderdomain.Order, domain.Provider, error) {
	method, err := domain.ParseMethod(rawMethod)
	if err != nil {
		return nil, nil, err
	}
	provider, err := s.registry.Get(method)
	if err != nil {
		return nil, nil, err
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !statusIn(order.Status, startable) {
		return nil, nil, domain.ErrInvalidOrderState
	}
	if order.PaymentProvider != "" && order.PaymentProvider != string(method) {
		return nil, nil, domain.ErrProviderMismatch
	}

	return order, provider, nil
}

func (s *Service) RequestRefund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResponse, error) {
	order, err := s.loadOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != orderdomain.StatusPaymentSucceeded {
		return nil, domain.ErrInvalidOrderState
	}
	if order.PaymentMethodID == nil || strings.TrimSpace(*order.PaymentMethodID) == "" {
		return nil, domain.ErrMissingPaymentReference
	}

	method, err := domain.ParseMethod(order.PaymentProvider)
	if err != nil {
		return nil, err
	}
	provider, err := s.registry.Get(method)
	if err != nil {
		return nil, err
	}

	refund, err := provider.CreateRefund(ctx, *order.PaymentMethodID, order.Amount, req.Reason)
	s.metrics.RecordProviderCall(string(method), "create_refund", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRefundFailed, err)
	}

	claimed, err := s.orders.UpdateStatusByID(ctx, s.db, order.ID.Int64(),
		orderdomain.StatusRefundRequested, orderdomain.StatusPaymentSucceeded)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// A concurrent request won the transition; the provider call above is
		// idempotent per payment id, so nothing was double-refunded.
		return nil, domain.ErrInvalidOrderState
	}

	s.log.Info("refund requested",
		zap.String("order_id", order.ID.String()),
		zap.String("provider", string(method)),
		zap.String("refund_id", refund.ID),
	)

	return &domain.RefundResponse{
		OrderID:      order.ID.String(),
		Provider:     method,
		RefundID:     refund.ID,
		RefundStatus: refund.Status,
		Status:       string(orderdomain.StatusRefundRequested),
	}, nil
}

func (s *Service) HandleWebhook(ctx context.Context, method domain.Method, payload []byte, headers http.Header) (*domain.WebhookResult, error) {
	provider, err := s.registry.Get(method)
	if err != nil {
		return nil, err
	}

	event, err := provider.VerifyWebhook(ctx, payload, headers)
	if err != nil {
		s.log.Warn("webhook rejected",
			zap.String("provider", string(method)),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.RecordPaymentEvent(string(method), event.Type)

	applied := false
	switch event.Type {
	case domain.EventTypePaymentSucceeded:
		applied, err = s.applyOutcome(ctx, event, orderdomain.StatusPaymentSucceeded)
	case domain.EventTypePaymentFailed:
		applied, err = s.applyOutcome(ctx, event, orderdomain.StatusPaymentFailed)
	case domain.EventTypeCheckoutCompleted:
		applied, err = s.applyCheckoutCompleted(ctx, event)
	case domain.EventTypeIgnored:
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("webhook processed",
		zap.String("provider", string(method)),
		zap.String("event_id", event.ProviderEventID),
		zap.String("event_type", event.Type),
		zap.String("raw_type", event.RawType),
		zap.Bool("applied", applied),
	)

	return &domain.WebhookResult{EventType: event.Type, Applied: applied}, nil
}

// applyOutcome settles a payment outcome. Redeliveries and late events find
// no row in a startable status and come back unapplied, which keeps webhook
// handling idempotent without an event store.
func (s *Service) applyOutcome(ctx context.Context, event *domain.Event, status orderdomain.Status) (bool, error) {
	if event.PaymentID != "" {
		claimed, err := s.orders.UpdateStatusByIntentID(ctx, s.db, event.PaymentID, status, startable[1:]...)
		if err != nil || claimed {
			return claimed, err
		}
	}
	// Capture ids differ from the stored checkout transaction id on
	// redirect-model providers; fall back to the order id the provider echoed.
	if event.OrderID != "" {
		id, err := snowflake.ParseString(event.OrderID)
		if err != nil {
			return false, nil
		}
		if status == orderdomain.StatusPaymentSucceeded && event.PaymentID != "" {
			return s.orders.ReconcileCheckout(ctx, s.db, id.Int64(), event.PaymentID, startable[1:]...)
		}
		return s.orders.UpdateStatusByID(ctx, s.db, id.Int64(), status, startable[1:]...)
	}
	return false, nil
}

func (s *Service) applyCheckoutCompleted(ctx context.Context, event *domain.Event) (bool, error) {
	id, err := snowflake.ParseString(event.OrderID)
	if err != nil {
		return false, nil
	}
	return s.orders.ReconcileCheckout(ctx, s.db, id.Int64(), event.PaymentID, startable[1:]...)
}

func (s *Service) loadOrder(ctx context.Context, raw string) (*orderdomain.Order, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return nil, orderdomain.ErrInvalidID
	}
	order, err := s.orders.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	return order, nil
}

func statusIn(status orderdomain.Status, set []orderdomain.Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
