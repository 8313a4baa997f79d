package payment

import (
	"github.com/payflowhq/payflow/internal/config"
	"github.com/payflowhq/payflow/internal/payment/providers"
	"github.com/payflowhq/payflow/internal/payment/providers/paypal"
	"github.com/payflowhq/payflow/internal/payment/providers/stripe"
	"github.com/payflowhq/payflow/internal/payment/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.service",
	fx.Provide(newRegistry),
	fx.Provide(service.New),
)

func newRegistry(cfg config.Config, log *zap.Logger) *providers.Registry {
	return providers.NewRegistry(
		stripe.New(stripe.Config{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			SuccessURL:    cfg.Checkout.SuccessURL,
			CancelURL:     cfg.Checkout.CancelURL,
		}, log),
		paypal.New(paypal.Config{
			ClientID:     cfg.PayPal.ClientID,
			ClientSecret: cfg.PayPal.ClientSecret,
			WebhookID:    cfg.PayPal.WebhookID,
			BaseURL:      cfg.PayPal.BaseURL(),
			ReturnURL:    cfg.Checkout.SuccessURL,
			CancelURL:    cfg.Checkout.CancelURL,
		}, log),
	)
}
