package service

import (
	"context"
	"fmt"

	"smartstay/pkg/config"
	"smartstay/pkg/kafka"
	"smartstay/pkg/model"
)

// Publisher is the slice of the broker producer the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Notifier publishes booking lifecycle notifications to the broker. Every
// dispatch is best-effort: failures are logged and swallowed so a broken
// broker can never fail a booking mutation.
type Notifier struct {
	producer Publisher
	source   string
	cfg      *config.Config
}

func NewNotifier(producer Publisher, source string, cfg *config.Config) *Notifier {
	return &Notifier{
		producer: producer,
		source:   source,
		cfg:      cfg,
	}
}

func (n *Notifier) BookingCreated(ctx context.Context, booking *model.Booking) {
	n.dispatch(ctx, booking, &model.Notification{
		Recipient: booking.HostEmail,
		Type:      model.NotificationBookingCreated,
		Title:     "New booking request",
		Message: fmt.Sprintf("A guest requested %s to %s for %d guest(s).",
			booking.CheckIn.Format("2006-01-02"), booking.CheckOut.Format("2006-01-02"), booking.Guests),
	})
}

func (n *Notifier) BookingConfirmed(ctx context.Context, booking *model.Booking) {
	n.dispatch(ctx, booking, &model.Notification{
		Recipient: booking.GuestEmail,
		Type:      model.NotificationBookingConfirmed,
		Title:     "Booking confirmed",
		Message: fmt.Sprintf("Your stay from %s to %s is confirmed.",
			booking.CheckIn.Format("2006-01-02"), booking.CheckOut.Format("2006-01-02")),
	})
}

func (n *Notifier) BookingCancelled(ctx context.Context, booking *model.Booking, reason string) {
	message := fmt.Sprintf("The booking from %s to %s was cancelled.",
		booking.CheckIn.Format("2006-01-02"), booking.CheckOut.Format("2006-01-02"))
	if reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, reason)
	}

	for _, recipient := range []string{booking.GuestEmail, booking.HostEmail} {
		n.dispatch(ctx, booking, &model.Notification{
			Recipient: recipient,
			Type:      model.NotificationBookingCancelled,
			Title:     "Booking cancelled",
			Message:   message,
		})
	}
}

func (n *Notifier) PaymentReceived(ctx context.Context, booking *model.Booking) {
	n.dispatch(ctx, booking, &model.Notification{
		Recipient: booking.GuestEmail,
		Type:      model.NotificationPaymentReceived,
		Title:     "Payment received",
		Message:   fmt.Sprintf("We received your payment of %.2f %s.", booking.Price.Total, n.cfg.Currency),
	})
	n.dispatch(ctx, booking, &model.Notification{
		Recipient: booking.HostEmail,
		Type:      model.NotificationPaymentReceived,
		Title:     "Booking paid",
		Message: fmt.Sprintf("The booking from %s to %s has been paid.",
			booking.CheckIn.Format("2006-01-02"), booking.CheckOut.Format("2006-01-02")),
	})
}

func (n *Notifier) RefundProcessed(ctx context.Context, booking *model.Booking) {
	n.dispatch(ctx, booking, &model.Notification{
		Recipient: booking.GuestEmail,
		Type:      model.NotificationRefundProcessed,
		Title:     "Refund processed",
		Message:   fmt.Sprintf("Full refund processed: %.2f %s is on its way back to you.", booking.Price.Total, n.cfg.Currency),
	})
}

func (n *Notifier) dispatch(ctx context.Context, booking *model.Booking, notification *model.Notification) {
	if n.producer == nil {
		n.cfg.Log.Debug("Notification producer not configured, dropping",
			"type", notification.Type,
			"recipient", notification.Recipient,
		)
		return
	}

	notification.Metadata = map[string]string{
		"booking_id":  booking.ID,
		"property_id": booking.PropertyID,
		"status":      string(booking.Status),
	}

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(notification).
		WithEventType(notification.Type).
		WithSource(n.source).
		Build()

	if err := n.producer.Publish(ctx, msg); err != nil {
		n.cfg.Log.Error("Failed to publish notification",
			"type", notification.Type,
			"recipient", notification.Recipient,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
