package model

import "time"

// Notification type tags.
const (
	NotificationBookingCreated   = "booking_created"
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationBookingCancelled = "booking_cancelled"
	NotificationPaymentReceived  = "payment_received"
	NotificationRefundProcessed  = "refund_processed"
)

// Notification is a pure side-channel record; it is dispatched best-effort and
// is never part of the booking invariants.
type Notification struct {
	ID        string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Recipient string            `json:"recipient" bson:"recipient" validate:"required,email"`
	Type      string            `json:"type" bson:"type" validate:"required,min=2,max=60"`
	Title     string            `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Message   string            `json:"message" bson:"message" validate:"required,min=2,max=2000"`
	ActionURL string            `json:"action_url,omitempty" bson:"action_url,omitempty" validate:"omitempty,url"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Read      bool              `json:"read" bson:"read"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
}
