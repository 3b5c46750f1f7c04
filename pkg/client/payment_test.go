package client

import (
	"strings"
	"testing"
)

const webhookSecret = "whsec_test_secret"

func newTestGateway() *paymentGateway {
	return &paymentGateway{
		http:          NewHttpClient("http://localhost:4242"),
		webhookSecret: webhookSecret,
	}
}

func TestVerifyAndParseEventValidSignature(t *testing.T) {
	gw := newTestGateway()
	payload := []byte(`{
		"id": "evt_123",
		"type": "checkout.session.completed",
		"data": {
			"session_id": "cs_abc",
			"payment_intent_id": "pi_abc",
			"amount_total": 540.0,
			"currency": "usd",
			"metadata": {"booking_id": "64f0c1a2b3d4e5f601234567"}
		}
	}`)

	event, err := gw.VerifyAndParseEvent(payload, SignPayload(payload, webhookSecret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.Type != EventCheckoutSessionCompleted {
		t.Errorf("expected type %q, got %q", EventCheckoutSessionCompleted, event.Type)
	}
	if event.Data.SessionID != "cs_abc" {
		t.Errorf("expected session cs_abc, got %q", event.Data.SessionID)
	}
	if event.Data.Metadata["booking_id"] != "64f0c1a2b3d4e5f601234567" {
		t.Errorf("unexpected metadata: %v", event.Data.Metadata)
	}
}

func TestVerifyAndParseEventSignatureWithoutPrefix(t *testing.T) {
	gw := newTestGateway()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{}}`)

	sig := strings.TrimPrefix(SignPayload(payload, webhookSecret), "sha256=")
	if _, err := gw.VerifyAndParseEvent(payload, sig); err != nil {
		t.Fatalf("bare hex signature should verify: %v", err)
	}
}

func TestVerifyAndParseEventRejectsTamperedPayload(t *testing.T) {
	gw := newTestGateway()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"amount_total":540}}`)
	sig := SignPayload(payload, webhookSecret)

	tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"amount_total":1}}`)
	if _, err := gw.VerifyAndParseEvent(tampered, sig); err == nil {
		t.Fatal("expected tampered payload to be rejected")
	}
}

func TestVerifyAndParseEventRejectsMissingSignature(t *testing.T) {
	gw := newTestGateway()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{}}`)

	if _, err := gw.VerifyAndParseEvent(payload, ""); err == nil {
		t.Fatal("expected missing signature to be rejected")
	}
}

func TestVerifyAndParseEventRejectsWrongSecret(t *testing.T) {
	gw := newTestGateway()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{}}`)

	sig := SignPayload(payload, "a_different_secret")
	if _, err := gw.VerifyAndParseEvent(payload, sig); err == nil {
		t.Fatal("expected signature from wrong secret to be rejected")
	}
}

func TestVerifyAndParseEventRejectsMalformedJSON(t *testing.T) {
	gw := newTestGateway()
	payload := []byte(`{"id":`)

	if _, err := gw.VerifyAndParseEvent(payload, SignPayload(payload, webhookSecret)); err == nil {
		t.Fatal("expected malformed payload to be rejected")
	}
}
