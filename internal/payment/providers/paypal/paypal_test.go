package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/payflowhq/payflow/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, mux *http.ServeMux) (*Provider, *atomic.Int64) {
	t.Helper()

	var tokenCalls atomic.Int64
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client_123", user)
		assert.Equal(t, "secret_456", pass)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"token_abc","expires_in":3600}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return New(Config{
		ClientID:     "client_123",
		ClientSecret: "secret_456",
		WebhookID:    "wh_789",
		BaseURL:      srv.URL,
		ReturnURL:    "https://shop.example/success",
		CancelURL:    "https://shop.example/cancel",
	}, zap.NewNop()), &tokenCalls
}

func TestCreatePaymentIntent(t *testing.T) {
	mux := http.NewServeMux()
	var gotBody map[string]any
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token_abc", r.Header.Get("Authorization"))
		assert.Equal(t, "order:42", r.Header.Get("PayPal-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"PP_ORDER_1","status":"CREATED","links":[
			{"href":"https://api.sandbox.paypal.com/v2/checkout/orders/PP_ORDER_1","rel":"self"},
			{"href":"https://www.sandbox.paypal.com/checkoutnow?token=PP_ORDER_1","rel":"approve"}
		]}`)
	})
	p, _ := newTestProvider(t, mux)

	intent, err := p.CreatePaymentIntent(context.Background(), 1000, "usd", map[string]string{"orderId": "42"})
	require.NoError(t, err)
	assert.Equal(t, "PP_ORDER_1", intent.ID)
	assert.Equal(t, "https://www.sandbox.paypal.com/checkoutnow?token=PP_ORDER_1", intent.ApprovalURL)

	assert.Equal(t, "CAPTURE", gotBody["intent"])
	units := gotBody["purchase_units"].([]any)
	unit := units[0].(map[string]any)
	amount := unit["amount"].(map[string]any)
	assert.Equal(t, "USD", amount["currency_code"])
	assert.Equal(t, "10.00", amount["value"])
	assert.Equal(t, "42", unit["custom_id"])
}

func TestTokenIsCached(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"PP_ORDER_2","links":[{"href":"https://example.com/approve","rel":"approve"}]}`)
	})
	p, tokenCalls := newTestProvider(t, mux)
	ctx := context.Background()

	_, err := p.CreatePaymentIntent(ctx, 500, "usd", nil)
	require.NoError(t, err)
	_, err = p.CreatePaymentIntent(ctx, 700, "usd", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), tokenCalls.Load())
}

func TestCreateCheckoutSessionRequiresApprovalLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"PP_ORDER_3","links":[{"href":"https://example.com/self","rel":"self"}]}`)
	})
	p, _ := newTestProvider(t, mux)

	_, err := p.CreateCheckoutSession(context.Background(), 1000, "usd", "42")
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
}

func TestCreateRefund(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/payments/captures/CAP_1/refund", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refund:CAP_1", r.Header.Get("PayPal-Request-Id"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "damaged item", body["note_to_payer"])
		_, hasAmount := body["amount"]
		assert.False(t, hasAmount)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"REFUND_1","status":"COMPLETED"}`)
	})
	p, _ := newTestProvider(t, mux)

	refund, err := p.CreateRefund(context.Background(), "CAP_1", 1000, "damaged item")
	require.NoError(t, err)
	assert.Equal(t, "REFUND_1", refund.ID)
	assert.Equal(t, "COMPLETED", refund.Status)
}

func TestAPIErrorSurfacesNameAndMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed."}`)
	})
	p, _ := newTestProvider(t, mux)

	_, err := p.CreatePaymentIntent(context.Background(), 1000, "usd", nil)
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
	assert.Contains(t, err.Error(), "UNPROCESSABLE_ENTITY")
}

func TestMissingCredentials(t *testing.T) {
	p := New(Config{BaseURL: "https://api-m.sandbox.paypal.com"}, zap.NewNop())

	_, err := p.CreatePaymentIntent(context.Background(), 1000, "usd", nil)
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
}

func webhookHeaders() http.Header {
	headers := http.Header{}
	headers.Set("Paypal-Auth-Algo", "SHA256withRSA")
	headers.Set("Paypal-Cert-Url", "https://api.sandbox.paypal.com/cert")
	headers.Set("Paypal-Transmission-Id", "tx_1")
	headers.Set("Paypal-Transmission-Sig", "sig_1")
	headers.Set("Paypal-Transmission-Time", "2026-09-01T00:00:00Z")
	return headers
}

func TestVerifyWebhookCaptureCompleted(t *testing.T) {
	mux := http.NewServeMux()
	var gotVerify map[string]any
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotVerify))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"verification_status":"SUCCESS"}`)
	})
	p, _ := newTestProvider(t, mux)

	payload := []byte(`{"id":"WH_1","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"CAP_1","status":"COMPLETED","custom_id":"42"}}`)
	event, err := p.VerifyWebhook(context.Background(), payload, webhookHeaders())
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeCheckoutCompleted, event.Type)
	assert.Equal(t, "WH_1", event.ProviderEventID)
	assert.Equal(t, "CAP_1", event.PaymentID)
	assert.Equal(t, "42", event.OrderID)

	assert.Equal(t, "wh_789", gotVerify["webhook_id"])
	assert.Equal(t, "tx_1", gotVerify["transmission_id"])
}

func TestVerifyWebhookCaptureDenied(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"verification_status":"SUCCESS"}`)
	})
	p, _ := newTestProvider(t, mux)

	payload := []byte(`{"id":"WH_2","event_type":"PAYMENT.CAPTURE.DENIED","resource":{"id":"CAP_2","custom_id":"42"}}`)
	event, err := p.VerifyWebhook(context.Background(), payload, webhookHeaders())
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypePaymentFailed, event.Type)
	assert.Equal(t, "42", event.OrderID)
}

func TestVerifyWebhookApprovalIsIgnored(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"verification_status":"SUCCESS"}`)
	})
	p, _ := newTestProvider(t, mux)

	payload := []byte(`{"id":"WH_3","event_type":"CHECKOUT.ORDER.APPROVED","resource":{"id":"PP_ORDER_1","custom_id":"42"}}`)
	event, err := p.VerifyWebhook(context.Background(), payload, webhookHeaders())
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeIgnored, event.Type)
}

func TestVerifyWebhookRejectsFailedVerification(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"verification_status":"FAILURE"}`)
	})
	p, _ := newTestProvider(t, mux)

	payload := []byte(`{"id":"WH_4","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"CAP_1","custom_id":"42"}}`)
	_, err := p.VerifyWebhook(context.Background(), payload, webhookHeaders())
	assert.ErrorIs(t, err, domain.ErrWebhookVerification)
}

func TestVerifyWebhookRejectsMissingHeaders(t *testing.T) {
	p, _ := newTestProvider(t, http.NewServeMux())

	_, err := p.VerifyWebhook(context.Background(), []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, domain.ErrWebhookVerification)
}

func TestMajorUnits(t *testing.T) {
	assert.Equal(t, "10.00", majorUnits(1000))
	assert.Equal(t, "0.05", majorUnits(5))
	assert.Equal(t, "123.45", majorUnits(12345))
}
