package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bookingservice "smartstay/internal/bookings/service"
	"smartstay/pkg/client"
	"smartstay/pkg/config"
	apperrors "smartstay/pkg/errors"
	"smartstay/pkg/model"
)

// Metadata keys attached to checkout sessions. The webhook reconciler uses
// them to tell the two payment flows apart.
const (
	metaBookingID = "booking_id"
	metaBooking   = "booking"
	metaFlow      = "flow"

	flowPayLater = "pay_later"
	flowDirect   = "direct"
)

type PaymentService interface {
	// CreateBookingCheckout opens a checkout session for an existing unpaid
	// booking (the pay-later flow).
	CreateBookingCheckout(ctx context.Context, actor model.Actor, bookingID string) (*client.CheckoutSession, error)

	// CreateDirectCheckout opens a checkout session for a stay that has no
	// booking record yet; the booking is materialized when payment lands.
	CreateDirectCheckout(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*client.CheckoutSession, error)

	// HandleWebhook verifies and reconciles one gateway event.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	gateway  client.PaymentGateway
	bookings bookingservice.BookingService
	cfg      *config.Config
}

func NewPaymentService(
	gateway client.PaymentGateway,
	bookings bookingservice.BookingService,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		gateway:  gateway,
		bookings: bookings,
		cfg:      cfg,
	}
}

func (s *paymentService) CreateBookingCheckout(ctx context.Context, actor model.Actor, bookingID string) (*client.CheckoutSession, error) {
	booking, err := s.bookings.GetByID(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only the guest can pay for this booking")
	}
	if booking.PaymentStatus == model.PaymentPaid {
		return nil, apperrors.Conflict("This booking is already paid")
	}
	if booking.Status == model.BookingCancelled {
		return nil, apperrors.Conflict("Cancelled bookings cannot be paid")
	}

	metadata := map[string]string{
		metaFlow:      flowPayLater,
		metaBookingID: booking.ID,
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, booking.Price.Total, s.cfg.Currency,
		s.cfg.CheckoutSuccessURL, s.cfg.CheckoutCancelURL, metadata)
	if err != nil {
		s.cfg.Log.Error("Failed to create checkout session", "booking_id", booking.ID, "error", err)
		return nil, apperrors.Unavailable("Payment gateway")
	}

	if err := s.bookings.AttachCheckoutSession(ctx, booking.ID, session.ID); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Checkout session created",
		"booking_id", booking.ID,
		"session_id", session.ID,
		"amount", booking.Price.Total,
	)
	return session, nil
}

func (s *paymentService) CreateDirectCheckout(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*client.CheckoutSession, error) {
	quote, err := s.bookings.Quote(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	// The entire prospective booking rides along in session metadata; the
	// dates stay unguarded until the webhook re-validates them under the
	// property lock.
	quoteJSON, err := json.Marshal(quote)
	if err != nil {
		return nil, apperrors.Internal("Failed to encode booking quote", err)
	}

	metadata := map[string]string{
		metaFlow:    flowDirect,
		metaBooking: string(quoteJSON),
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, quote.Price.Total, s.cfg.Currency,
		s.cfg.CheckoutSuccessURL, s.cfg.CheckoutCancelURL, metadata)
	if err != nil {
		s.cfg.Log.Error("Failed to create direct checkout session", "property_id", req.PropertyID, "error", err)
		return nil, apperrors.Unavailable("Payment gateway")
	}

	s.cfg.Log.Info("Direct checkout session created",
		"property_id", quote.PropertyID,
		"session_id", session.ID,
		"amount", quote.Price.Total,
	)
	return session, nil
}

// HandleWebhook reconciles a verified gateway event against booking state.
// Replayed deliveries are detected by correlation id and acknowledged
// without side effects.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyAndParseEvent(payload, signature)
	if err != nil {
		s.cfg.Log.Warn("Rejected webhook", "error", err)
		return apperrors.InvalidInput("Invalid webhook signature or payload")
	}

	if event.Type != client.EventCheckoutSessionCompleted {
		s.cfg.Log.Info("Ignoring webhook event", "type", event.Type, "event_id", event.ID)
		return nil
	}

	switch event.Data.Metadata[metaFlow] {
	case flowPayLater:
		return s.reconcilePayLater(ctx, event)
	case flowDirect:
		return s.reconcileDirect(ctx, event)
	default:
		s.cfg.Log.Warn("Webhook session has no recognizable flow", "event_id", event.ID, "session_id", event.Data.SessionID)
		return apperrors.InvalidInput("Checkout session metadata is missing flow information")
	}
}

func (s *paymentService) reconcilePayLater(ctx context.Context, event *client.WebhookEvent) error {
	bookingID := event.Data.Metadata[metaBookingID]
	if bookingID == "" {
		return apperrors.InvalidInput("Pay-later session is missing its booking reference")
	}

	flipped, err := s.bookings.ConfirmPayment(ctx, bookingID, event.Data.PaymentIntentID)
	if err != nil {
		return err
	}

	if !flipped {
		s.cfg.Log.Info("Webhook replay ignored", "booking_id", bookingID, "event_id", event.ID)
		return nil
	}

	s.cfg.Log.Info("Payment reconciled",
		"booking_id", bookingID,
		"session_id", event.Data.SessionID,
		"payment_intent_id", event.Data.PaymentIntentID,
	)
	return nil
}

func (s *paymentService) reconcileDirect(ctx context.Context, event *client.WebhookEvent) error {
	// A booking already carrying this session id means this delivery was
	// processed before.
	if existing, err := s.bookings.GetBySessionID(ctx, event.Data.SessionID); err == nil {
		s.cfg.Log.Info("Webhook replay ignored", "booking_id", existing.ID, "event_id", event.ID)
		return nil
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	rawQuote := event.Data.Metadata[metaBooking]
	if rawQuote == "" {
		return apperrors.InvalidInput("Direct session is missing its booking payload")
	}

	var booking model.Booking
	if err := json.Unmarshal([]byte(rawQuote), &booking); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("Undecodable booking payload in session %s", event.Data.SessionID))
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.ID = ""
	booking.Status = model.BookingConfirmed
	booking.PaymentStatus = model.PaymentPaid
	booking.CheckoutSessionID = event.Data.SessionID
	booking.PaymentIntentID = event.Data.PaymentIntentID
	booking.PaidAt = &now

	if err := s.bookings.CreateFromPayment(ctx, &booking); err != nil {
		// Dates taken while the guest was paying: the money is captured but
		// the stay cannot exist. Refund and surface the conflict.
		if apperrors.IsConflict(err) {
			s.cfg.Log.Warn("Dates taken before payment completed, refunding",
				"session_id", event.Data.SessionID,
				"payment_intent_id", event.Data.PaymentIntentID,
			)
			if _, refundErr := s.gateway.Refund(ctx, event.Data.PaymentIntentID); refundErr != nil {
				s.cfg.Log.Error("Automatic refund failed",
					"payment_intent_id", event.Data.PaymentIntentID,
					"error", refundErr,
				)
			}
		}
		return err
	}

	s.cfg.Log.Info("Booking materialized from payment",
		"booking_id", booking.ID,
		"session_id", event.Data.SessionID,
	)
	return nil
}
