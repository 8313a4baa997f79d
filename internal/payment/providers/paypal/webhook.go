package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/payflowhq/payflow/internal/payment/domain"
)

// PayPal signs notifications out of band; authenticity is established by
// posting the transmission headers back to the verify-webhook-signature
// endpoint rather than recomputing an HMAC locally.
const (
	headerTransmissionID   = "Paypal-Transmission-Id"
	headerTransmissionTime = "Paypal-Transmission-Time"
	headerTransmissionSig  = "Paypal-Transmission-Sig"
	headerCertURL          = "Paypal-Cert-Url"
	headerAuthAlgo         = "Paypal-Auth-Algo"
)

type verifyRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

type webhookEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  webhookResource `json:"resource"`
}

type webhookResource struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	CustomID string `json:"custom_id"`
}

func (p *Provider) VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) (*domain.Event, error) {
	if p.webhookID == "" {
		return nil, fmt.Errorf("%w: paypal webhook id not configured", domain.ErrWebhookVerification)
	}

	verify := verifyRequest{
		AuthAlgo:         strings.TrimSpace(headers.Get(headerAuthAlgo)),
		CertURL:          strings.TrimSpace(headers.Get(headerCertURL)),
		TransmissionID:   strings.TrimSpace(headers.Get(headerTransmissionID)),
		TransmissionSig:  strings.TrimSpace(headers.Get(headerTransmissionSig)),
		TransmissionTime: strings.TrimSpace(headers.Get(headerTransmissionTime)),
		WebhookID:        p.webhookID,
		WebhookEvent:     json.RawMessage(payload),
	}
	if verify.TransmissionID == "" || verify.TransmissionSig == "" || verify.TransmissionTime == "" {
		return nil, fmt.Errorf("%w: missing paypal transmission headers", domain.ErrWebhookVerification)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrWebhookVerification)
	}

	var result verifyResponse
	if err := p.doJSON(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", verify, "", &result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWebhookVerification, err)
	}
	if !strings.EqualFold(result.VerificationStatus, "SUCCESS") {
		return nil, fmt.Errorf("%w: signature mismatch", domain.ErrWebhookVerification)
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrWebhookVerification)
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, fmt.Errorf("%w: event id missing", domain.ErrWebhookVerification)
	}

	switch strings.TrimSpace(event.EventType) {
	case "PAYMENT.CAPTURE.COMPLETED":
		return p.parseCaptureEvent(event, domain.EventTypeCheckoutCompleted)
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		return p.parseCaptureEvent(event, domain.EventTypePaymentFailed)
	default:
		// CHECKOUT.ORDER.APPROVED lands here on purpose: approval precedes
		// capture and settles nothing.
		return &domain.Event{
			Type:            domain.EventTypeIgnored,
			ProviderEventID: event.ID,
			RawType:         event.EventType,
		}, nil
	}
}

func (p *Provider) parseCaptureEvent(event webhookEvent, eventType string) (*domain.Event, error) {
	orderID := strings.TrimSpace(event.Resource.CustomID)
	if orderID == "" {
		// A capture this system never created.
		return &domain.Event{
			Type:            domain.EventTypeIgnored,
			ProviderEventID: event.ID,
			RawType:         event.EventType,
		}, nil
	}
	return &domain.Event{
		Type:            eventType,
		ProviderEventID: event.ID,
		PaymentID:       strings.TrimSpace(event.Resource.ID),
		OrderID:         orderID,
		RawType:         event.EventType,
	}, nil
}
