package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"smartstay/internal/payments/service"
	"smartstay/pkg/client"
	apperrors "smartstay/pkg/errors"
	httputil "smartstay/pkg/http"
	"smartstay/pkg/logger"
	"smartstay/pkg/middleware"
	"smartstay/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// WebhookPath is exempt from actor identity: the gateway authenticates with a
// payload signature, not actor headers.
const WebhookPath = "/api/v1/payments/webhook"

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

// CheckoutBooking opens a checkout session for an existing unpaid booking.
func (h *PaymentHandler) CheckoutBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "CheckoutBooking", apperrors.Unauthorized("Missing actor identity"))
		return
	}

	session, err := h.service.CreateBookingCheckout(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CheckoutBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, session); err != nil {
		h.log.Error("failed to write created response", "handler", "CheckoutBooking", "operation", "WriteCreated", "error", err)
	}
}

// CheckoutDirect prices a stay and opens a checkout session without creating
// a booking record; the booking exists only once payment completes.
func (h *PaymentHandler) CheckoutDirect(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "CheckoutDirect", apperrors.Unauthorized("Missing actor identity"))
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "CheckoutDirect", apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	session, err := h.service.CreateDirectCheckout(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "CheckoutDirect", err)
		return
	}

	if err := httputil.WriteCreated(w, session); err != nil {
		h.log.Error("failed to write created response", "handler", "CheckoutDirect", "operation", "WriteCreated", "error", err)
	}
}

// Webhook receives gateway events. The raw body is needed verbatim for
// signature verification, so it is read before any decoding.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, "Webhook", apperrors.InvalidInput("Failed to read webhook body"))
		return
	}

	signature := r.Header.Get(client.SignatureHeader)

	if err := h.service.HandleWebhook(r.Context(), payload, signature); err != nil {
		h.writeError(w, "Webhook", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"received": "true"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/checkout/booking/:id", h.CheckoutBooking)
	router.POST("/api/v1/payments/checkout/direct", h.CheckoutDirect)
	router.POST(WebhookPath, h.Webhook)
}
