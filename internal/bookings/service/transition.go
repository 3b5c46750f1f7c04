package service

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "smartstay/internal/bookings/errors"
	apperrors "smartstay/pkg/errors"
	"smartstay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

// Refunder issues refunds against the payment gateway. Satisfied by the
// payments service.
type Refunder interface {
	Refund(ctx context.Context, paymentIntentID string) (refundID string, refundStatus string, err error)
}

// allowedTransitions is the closed set of legal status moves. Anything not
// listed, including every move out of a terminal status, is rejected.
var allowedTransitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingPending:   {model.BookingConfirmed, model.BookingCancelled},
	model.BookingConfirmed: {model.BookingCheckedIn, model.BookingCancelled},
	model.BookingCheckedIn: {model.BookingCompleted},
	model.BookingCompleted: {},
	model.BookingCancelled: {},
}

func transitionAllowed(from, to model.BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves a booking through its lifecycle. The status flip is
// guarded by the expected current status at the storage layer, so two
// concurrent transitions cannot both win. Cancelling a paid booking refunds
// first and aborts the cancellation if the refund fails.
func (s *bookingService) Transition(ctx context.Context, actor model.Actor, id string, req *model.TransitionRequest) (*model.Booking, error) {
	if err := s.validator.ValidateTransition(req); err != nil {
		s.cfg.Log.Warn("Transition request validation failed", "booking_id", id, "error", err)
		return nil, apperrors.Validation("Invalid transition request", map[string]any{"error": err.Error()})
	}

	booking, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(booking.Status, req.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf(
			"Cannot transition booking from %s to %s", booking.Status, req.Status,
		))
	}

	if err := s.authorizeTransition(actor, booking, req.Status); err != nil {
		return nil, err
	}

	now := s.now()

	// Check-in only during the stay window, completion only after check-out.
	switch req.Status {
	case model.BookingCheckedIn:
		if now.Before(booking.CheckIn) || !now.Before(booking.CheckOut) {
			return nil, apperrors.Conflict("Check-in is only possible between the booked check-in and check-out dates")
		}
	case model.BookingCompleted:
		if now.Before(booking.CheckOut) {
			return nil, apperrors.Conflict("Booking cannot be completed before check-out")
		}
	}

	extra := bson.M{}
	refunded := false

	if req.Status == model.BookingCancelled {
		extra["cancelled_at"] = now

		// Guests lose the right to cancel close to check-in. Hosts and
		// admins are not bound by the cutoff.
		if actor.Role == model.RoleGuest && booking.CheckIn.Sub(now) <= s.cfg.GuestCancelCutoff {
			return nil, apperrors.Forbidden(fmt.Sprintf(
				"Bookings cannot be cancelled within %s of check-in", s.cfg.GuestCancelCutoff,
			))
		}

		// Only host-side cancellations refund. A guest who cancels a paid
		// booking forfeits the payment.
		if booking.PaymentStatus == model.PaymentPaid && actor.Role != model.RoleGuest && booking.PaymentIntentID != "" {
			if s.refunder == nil {
				return nil, apperrors.Internal("Refunds are not configured", nil)
			}
			refundID, refundStatus, refundErr := s.refunder.Refund(ctx, booking.PaymentIntentID)
			if refundErr != nil {
				s.cfg.Log.Error("Refund failed, cancellation aborted",
					"booking_id", booking.ID,
					"payment_intent_id", booking.PaymentIntentID,
					"error", refundErr,
				)
				return nil, apperrors.Internal("Refund failed; booking was not cancelled", refundErr)
			}
			extra["refund_id"] = refundID
			extra["refund_status"] = refundStatus
			extra["refunded_at"] = now
			refunded = true
		}
	}

	if err := s.repo.ApplyTransition(ctx, booking.ID, booking.Status, req.Status, extra); err != nil {
		if errors.Is(err, bookingserrors.ErrStatusConflict) {
			// Refund already went through; the booking record must still say
			// so even though the flip lost the race.
			if refunded {
				if setErr := s.repo.SetRefund(ctx, booking.ID, extra["refund_id"].(string), extra["refund_status"].(string)); setErr != nil {
					s.cfg.Log.Error("Failed to record refund after transition conflict", "booking_id", booking.ID, "error", setErr)
				}
			}
			return nil, apperrors.Conflict("Booking status changed concurrently, please retry")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", booking.ID)
		}
		return nil, apperrors.Internal("Failed to transition booking", err)
	}

	updated, err := s.findByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking transitioned",
		"booking_id", updated.ID,
		"from", booking.Status,
		"to", updated.Status,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
	)

	if s.notifier != nil {
		switch updated.Status {
		case model.BookingConfirmed:
			s.notifier.BookingConfirmed(ctx, updated)
		case model.BookingCancelled:
			s.notifier.BookingCancelled(ctx, updated, req.Reason)
			if refunded {
				s.notifier.RefundProcessed(ctx, updated)
			}
		}
	}

	return updated, nil
}

// authorizeTransition enforces who may request each move. Guests may only
// cancel their own bookings; hosts drive the rest of the lifecycle for their
// own properties; admins may do anything.
func (s *bookingService) authorizeTransition(actor model.Actor, booking *model.Booking, to model.BookingStatus) error {
	if actor.IsAdmin() {
		return nil
	}

	switch to {
	case model.BookingCancelled:
		if actor.Role == model.RoleGuest && booking.GuestID == actor.ID {
			return nil
		}
		if actor.Role == model.RoleHost && booking.HostID == actor.ID {
			return nil
		}
	case model.BookingConfirmed, model.BookingCheckedIn, model.BookingCompleted:
		if actor.Role == model.RoleHost && booking.HostID == actor.ID {
			return nil
		}
	}

	return apperrors.Forbidden(fmt.Sprintf("You are not allowed to move this booking to %s", to))
}
