// Package stripe implements the payment provider contract against the
// Stripe REST API.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/payflowhq/payflow/internal/payment/domain"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.stripe.com"

// Config holds the credentials and redirect targets for the Stripe provider.
// BaseURL is overridable for tests.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	BaseURL       string
}

type Provider struct {
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	baseURL       string
	client        *http.Client
	log           *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Provider {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p := &Provider{
		secretKey:     strings.TrimSpace(cfg.SecretKey),
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{Timeout: 12 * time.Second},
		log:           log.Named("payment.stripe"),
	}
	if p.secretKey == "" {
		p.log.Warn("stripe credentials not configured",
			zap.Strings("required_env", []string{"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET"}),
		)
	}
	return p
}

func (p *Provider) Name() domain.Method { return domain.MethodStripe }

type paymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type priceResponse struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	values := url.Values{}
	values.Set("amount", strconv.FormatInt(amount, 10))
	values.Set("currency", strings.ToLower(currency))
	for key, value := range metadata {
		values.Set("metadata["+key+"]", value)
	}

	var intent paymentIntentResponse
	idempotencyKey := ""
	if orderID := metadata["orderId"]; orderID != "" {
		idempotencyKey = "intent:" + orderID
	}
	if err := p.doForm(ctx, "/v1/payment_intents", values, idempotencyKey, &intent); err != nil {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_payment_intent", err)
	}
	if intent.ID == "" {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_payment_intent", errors.New("stripe_response_invalid"))
	}

	return &domain.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, amount int64, currency string, orderID string) (*domain.CheckoutSession, error) {
	values := url.Values{}
	values.Set("mode", "payment")
	values.Set("payment_method_types[]", "card")
	values.Set("line_items[0][price_data][currency]", strings.ToLower(currency))
	values.Set("line_items[0][price_data][product_data][name]", "Order "+orderID)
	values.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amount, 10))
	values.Set("line_items[0][quantity]", "1")
	values.Set("success_url", p.successURL)
	values.Set("cancel_url", p.cancelURL)
	values.Set("metadata[orderId]", orderID)

	var session checkoutSessionResponse
	if err := p.doForm(ctx, "/v1/checkout/sessions", values, "checkout:"+orderID, &session); err != nil {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_checkout_session", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_checkout_session", errors.New("stripe_response_invalid"))
	}

	return &domain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (p *Provider) CreateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*domain.Refund, error) {
	_ = reason // Stripe accepts a closed enum; customer-initiated is the only flow here.

	values := url.Values{}
	values.Set("payment_intent", paymentID)
	if amount > 0 {
		values.Set("amount", strconv.FormatInt(amount, 10))
	}
	values.Set("reason", "requested_by_customer")

	var refund refundResponse
	if err := p.doForm(ctx, "/v1/refunds", values, "refund:"+paymentID, &refund); err != nil {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_refund", err)
	}
	if refund.ID == "" {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_refund", errors.New("stripe_response_invalid"))
	}

	return &domain.Refund{ID: refund.ID, Status: refund.Status}, nil
}

func (p *Provider) CreateProduct(ctx context.Context, name string, description string) (*domain.CatalogProduct, error) {
	values := url.Values{}
	values.Set("name", name)
	if strings.TrimSpace(description) != "" {
		values.Set("description", description)
	}

	var product productResponse
	if err := p.doForm(ctx, "/v1/products", values, "", &product); err != nil {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_product", err)
	}
	if product.ID == "" {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_product", errors.New("stripe_response_invalid"))
	}

	return &domain.CatalogProduct{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
	}, nil
}

func (p *Provider) CreatePrice(ctx context.Context, productID string, amount int64, currency string) (*domain.CatalogPrice, error) {
	values := url.Values{}
	values.Set("product", productID)
	values.Set("unit_amount", strconv.FormatInt(amount, 10))
	values.Set("currency", strings.ToLower(currency))

	var price priceResponse
	if err := p.doForm(ctx, "/v1/prices", values, "", &price); err != nil {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_price", err)
	}
	if price.ID == "" {
		return nil, domain.NewProviderError(domain.MethodStripe, "create_price", errors.New("stripe_response_invalid"))
	}

	return &domain.CatalogPrice{
		ID:         price.ID,
		ProductID:  price.Product,
		UnitAmount: price.UnitAmount,
		Currency:   price.Currency,
	}, nil
}

func (p *Provider) doForm(ctx context.Context, path string, values url.Values, idempotencyKey string, out any) error {
	if p.secretKey == "" {
		return errors.New("stripe_not_configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return errors.New("stripe_request_failed")
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			message = "stripe_request_failed"
		}
		return errors.New(message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
