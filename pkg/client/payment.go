package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Webhook event types delivered by the payment gateway.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"

	// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw payload,
	// optionally prefixed with "sha256=".
	SignatureHeader = "X-Gateway-Signature"
)

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type RefundResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// WebhookEvent is the parsed, signature-verified payload of a gateway webhook.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionID       string            `json:"session_id"`
		PaymentIntentID string            `json:"payment_intent_id"`
		AmountTotal     float64           `json:"amount_total"`
		Currency        string            `json:"currency"`
		Metadata        map[string]string `json:"metadata"`
	} `json:"data"`
}

// PaymentGateway is the surface the booking core needs from the payment
// processor: session creation, webhook verification and refunds. All ids are
// gateway-assigned opaque strings used only as correlation keys.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, amount float64, currency, successURL, cancelURL string, metadata map[string]string) (*CheckoutSession, error)
	Refund(ctx context.Context, paymentIntentID string) (*RefundResult, error)
	VerifyAndParseEvent(payload []byte, signature string) (*WebhookEvent, error)
}

type paymentGateway struct {
	http          *HttpClient
	apiKey        string
	webhookSecret string
}

func NewPaymentGateway(baseURL, apiKey, webhookSecret string) PaymentGateway {
	return &paymentGateway{
		http:          NewHttpClient(baseURL),
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
	}
}

type checkoutSessionRequest struct {
	Amount     float64           `json:"amount"`
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (g *paymentGateway) CreateCheckoutSession(ctx context.Context, amount float64, currency, successURL, cancelURL string, metadata map[string]string) (*CheckoutSession, error) {
	req := checkoutSessionRequest{
		Amount:     amount,
		Currency:   currency,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata:   metadata,
	}

	resp, err := g.http.PostJSON(ctx, "/v1/checkout/sessions", req, g.authHeaders())
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment gateway rejected checkout session: status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := resp.DecodeJSON(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

func (g *paymentGateway) Refund(ctx context.Context, paymentIntentID string) (*RefundResult, error) {
	body := map[string]string{"payment_intent_id": paymentIntentID}

	resp, err := g.http.PostJSON(ctx, "/v1/refunds", body, g.authHeaders())
	if err != nil {
		return nil, fmt.Errorf("failed to request refund: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment gateway rejected refund: status %d", resp.StatusCode)
	}

	var refund RefundResult
	if err := resp.DecodeJSON(&refund); err != nil {
		return nil, fmt.Errorf("failed to decode refund result: %w", err)
	}
	return &refund, nil
}

// VerifyAndParseEvent checks the HMAC-SHA256 signature of a raw webhook
// payload and decodes it. A missing or wrong signature is an error; redelivery
// is governed entirely by the gateway's own retry policy.
func (g *paymentGateway) VerifyAndParseEvent(payload []byte, signature string) (*WebhookEvent, error) {
	signature = strings.TrimPrefix(signature, "sha256=")
	if signature == "" {
		return nil, fmt.Errorf("missing webhook signature")
	}

	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("invalid webhook signature")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("webhook payload missing event type")
	}
	return &event, nil
}

// SignPayload computes the signature the gateway would attach to a payload.
// Exposed for tests and local webhook replay tooling.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (g *paymentGateway) authHeaders() map[string]string {
	if g.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + g.apiKey}
}
