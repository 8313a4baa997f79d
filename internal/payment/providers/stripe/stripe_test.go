package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/payflowhq/payflow/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
		SuccessURL:    "https://shop.example/success",
		CancelURL:     "https://shop.example/cancel",
		BaseURL:       srv.URL,
	}, zap.NewNop())
}

func signPayload(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestCreatePaymentIntent(t *testing.T) {
	var gotPath, gotAuth, gotIdempotency string
	var gotForm map[string][]string

	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdempotency = r.Header.Get("Idempotency-Key")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"pi_123","client_secret":"pi_123_secret"}`)
	}))

	intent, err := p.CreatePaymentIntent(context.Background(), 1000, "usd", map[string]string{"orderId": "42"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)

	assert.Equal(t, "/v1/payment_intents", gotPath)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "intent:42", gotIdempotency)
	assert.Equal(t, "1000", gotForm["amount"][0])
	assert.Equal(t, "usd", gotForm["currency"][0])
	assert.Equal(t, "42", gotForm["metadata[orderId]"][0])
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string

	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_123","url":"https://checkout.stripe.com/pay/cs_123"}`)
	}))

	session, err := p.CreateCheckoutSession(context.Background(), 1000, "usd", "42")
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", session.URL)

	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "1000", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "https://shop.example/success", gotForm["success_url"][0])
	assert.Equal(t, "42", gotForm["metadata[orderId]"][0])
}

func TestCreateRefund(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.Equal(t, "pi_123", r.PostForm["payment_intent"][0])
		assert.Equal(t, "1000", r.PostForm["amount"][0])
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"re_123","status":"succeeded"}`)
	}))

	refund, err := p.CreateRefund(context.Background(), "pi_123", 1000, "damaged item")
	require.NoError(t, err)
	assert.Equal(t, "re_123", refund.ID)
	assert.Equal(t, "succeeded", refund.Status)
}

func TestAPIErrorSurfacesMessage(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"message":"Your card was declined."}}`)
	}))

	_, err := p.CreatePaymentIntent(context.Background(), 1000, "usd", nil)
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestMissingSecretKey(t *testing.T) {
	p := New(Config{WebhookSecret: "whsec_test"}, zap.NewNop())

	_, err := p.CreatePaymentIntent(context.Background(), 1000, "usd", nil)
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
}

func TestVerifyWebhookPaymentIntentSucceeded(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)

	headers := http.Header{}
	headers.Set(SignatureHeader, signPayload("whsec_test", time.Now().Unix(), payload))

	event, err := p.VerifyWebhook(context.Background(), payload, headers)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypePaymentSucceeded, event.Type)
	assert.Equal(t, "evt_1", event.ProviderEventID)
	assert.Equal(t, "pi_123", event.PaymentID)
}

func TestVerifyWebhookCheckoutSessionCompleted(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())
	payload := []byte(`{"id":"evt_2","type":"checkout.session.completed","data":{"object":{"id":"cs_1","payment_intent":"pi_456","metadata":{"orderId":"42"}}}}`)

	headers := http.Header{}
	headers.Set(SignatureHeader, signPayload("whsec_test", time.Now().Unix(), payload))

	event, err := p.VerifyWebhook(context.Background(), payload, headers)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeCheckoutCompleted, event.Type)
	assert.Equal(t, "42", event.OrderID)
	assert.Equal(t, "pi_456", event.PaymentID)
}

func TestVerifyWebhookForeignSessionIgnored(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())
	payload := []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_2","payment_intent":"pi_789"}}}`)

	headers := http.Header{}
	headers.Set(SignatureHeader, signPayload("whsec_test", time.Now().Unix(), payload))

	event, err := p.VerifyWebhook(context.Background(), payload, headers)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeIgnored, event.Type)
}

func TestVerifyWebhookUnknownTypeIgnored(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())
	payload := []byte(`{"id":"evt_4","type":"customer.created","data":{"object":{}}}`)

	headers := http.Header{}
	headers.Set(SignatureHeader, signPayload("whsec_test", time.Now().Unix(), payload))

	event, err := p.VerifyWebhook(context.Background(), payload, headers)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeIgnored, event.Type)
	assert.Equal(t, "customer.created", event.RawType)
}

func TestVerifyWebhookRejectsBadSignature(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())
	payload := []byte(`{"id":"evt_5","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)

	headers := http.Header{}
	headers.Set(SignatureHeader, signPayload("whsec_wrong", time.Now().Unix(), payload))

	_, err := p.VerifyWebhook(context.Background(), payload, headers)
	assert.ErrorIs(t, err, domain.ErrWebhookVerification)
}

func TestVerifyWebhookRejectsStaleTimestamp(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())
	payload := []byte(`{"id":"evt_6","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)

	headers := http.Header{}
	headers.Set(SignatureHeader, signPayload("whsec_test", time.Now().Add(-time.Hour).Unix(), payload))

	_, err := p.VerifyWebhook(context.Background(), payload, headers)
	assert.ErrorIs(t, err, domain.ErrWebhookVerification)
}

func TestVerifyWebhookRejectsMissingHeader(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())

	_, err := p.VerifyWebhook(context.Background(), []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, domain.ErrWebhookVerification)
}

func TestVerifyWebhookRejectsMalformedHeader(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())

	headers := http.Header{}
	headers.Set(SignatureHeader, "not-a-signature")

	_, err := p.VerifyWebhook(context.Background(), []byte(`{}`), headers)
	assert.ErrorIs(t, err, domain.ErrWebhookVerification)
}
