package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/payflowhq/payflow/internal/payment/domain"
)

// SignatureHeader carries the t/v1 HMAC signature scheme.
const SignatureHeader = "Stripe-Signature"

// signatureTolerance bounds how old a signed timestamp may be.
const signatureTolerance = 5 * time.Minute

type stripeEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripePaymentIntent struct {
	ID string `json:"id"`
}

type stripeCheckoutSession struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

func (p *Provider) VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) (*domain.Event, error) {
	_ = ctx

	if p.webhookSecret == "" {
		return nil, fmt.Errorf("%w: stripe webhook secret not configured", domain.ErrWebhookVerification)
	}

	sigHeader := strings.TrimSpace(headers.Get(SignatureHeader))
	if sigHeader == "" {
		return nil, fmt.Errorf("%w: missing %s header", domain.ErrWebhookVerification, SignatureHeader)
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed %s header", domain.ErrWebhookVerification, SignatureHeader)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature timestamp", domain.ErrWebhookVerification)
	}
	if age := time.Since(time.Unix(ts, 0)); age > signatureTolerance || age < -signatureTolerance {
		return nil, fmt.Errorf("%w: signature timestamp outside tolerance", domain.ErrWebhookVerification)
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	matched := false
	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: signature mismatch", domain.ErrWebhookVerification)
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrWebhookVerification)
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, fmt.Errorf("%w: event id missing", domain.ErrWebhookVerification)
	}

	switch strings.TrimSpace(event.Type) {
	case "payment_intent.succeeded":
		return p.parseIntentEvent(event, domain.EventTypePaymentSucceeded)
	case "payment_intent.payment_failed":
		return p.parseIntentEvent(event, domain.EventTypePaymentFailed)
	case "checkout.session.completed":
		return p.parseCheckoutEvent(event)
	default:
		return &domain.Event{
			Type:            domain.EventTypeIgnored,
			ProviderEventID: event.ID,
			RawType:         event.Type,
		}, nil
	}
}

func (p *Provider) parseIntentEvent(event stripeEvent, eventType string) (*domain.Event, error) {
	var intent stripePaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, fmt.Errorf("%w: malformed payment intent object", domain.ErrWebhookVerification)
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, fmt.Errorf("%w: payment intent id missing", domain.ErrWebhookVerification)
	}
	return &domain.Event{
		Type:            eventType,
		ProviderEventID: event.ID,
		PaymentID:       intent.ID,
		RawType:         event.Type,
	}, nil
}

func (p *Provider) parseCheckoutEvent(event stripeEvent) (*domain.Event, error) {
	var session stripeCheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout session object", domain.ErrWebhookVerification)
	}
	orderID := strings.TrimSpace(session.Metadata["orderId"])
	if orderID == "" || strings.TrimSpace(session.PaymentIntent) == "" {
		// A completed session this system never created.
		return &domain.Event{
			Type:            domain.EventTypeIgnored,
			ProviderEventID: event.ID,
			RawType:         event.Type,
		}, nil
	}
	return &domain.Event{
		Type:            domain.EventTypeCheckoutCompleted,
		ProviderEventID: event.ID,
		PaymentID:       session.PaymentIntent,
		OrderID:         orderID,
		RawType:         event.Type,
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}
