package model

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type PriceBreakdown struct {
	PricePerNight float64 `json:"price_per_night" bson:"price_per_night" validate:"required,gt=0"`
	Nights        int     `json:"nights" bson:"nights" validate:"required,min=1"`
	CleaningFee   float64 `json:"cleaning_fee" bson:"cleaning_fee" validate:"min=0"`
	ServiceFee    float64 `json:"service_fee" bson:"service_fee" validate:"min=0"`
	Total         float64 `json:"total" bson:"total" validate:"required,gt=0"`
}

// Booking is the central record of the system. A booking is never physically
// deleted; cancellation is a terminal status, not a removal. The check-in and
// check-out dates form a half-open interval [check_in, check_out) which must
// never overlap another non-cancelled booking on the same property.
type Booking struct {
	ID         string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID string         `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	GuestID    string         `json:"guest_id" bson:"guest_id" validate:"required,mongodb"`
	GuestEmail string         `json:"guest_email" bson:"guest_email" validate:"required,email"`
	HostID     string         `json:"host_id" bson:"host_id" validate:"required,mongodb"`
	HostEmail  string         `json:"host_email" bson:"host_email" validate:"required,email"`
	CheckIn    time.Time      `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut   time.Time      `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	Guests     int            `json:"guests" bson:"guests" validate:"required,min=1,max=100"`
	Price      PriceBreakdown `json:"price" bson:"price"`
	Status     BookingStatus  `json:"status" bson:"status" validate:"required,booking_status"`

	PaymentStatus     PaymentStatus `json:"payment_status" bson:"payment_status" validate:"omitempty,oneof=unpaid paid"`
	CheckoutSessionID string        `json:"checkout_session_id,omitempty" bson:"checkout_session_id,omitempty"`
	PaymentIntentID   string        `json:"payment_intent_id,omitempty" bson:"payment_intent_id,omitempty"`
	RefundID          string        `json:"refund_id,omitempty" bson:"refund_id,omitempty"`
	RefundStatus      string        `json:"refund_status,omitempty" bson:"refund_status,omitempty"`

	Reviewed bool `json:"reviewed" bson:"reviewed"`

	CreatedAt   time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at" validate:"omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty" bson:"refunded_at,omitempty"`
}

// BookingRequest is what a guest submits. Price fields are optional; when
// absent the factory computes them from the property and configured fees.
type BookingRequest struct {
	PropertyID  string    `json:"property_id" validate:"required,mongodb"`
	CheckIn     time.Time `json:"check_in" validate:"required"`
	CheckOut    time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
	Guests      int       `json:"guests" validate:"required,min=1,max=100"`
	CleaningFee *float64  `json:"cleaning_fee,omitempty" validate:"omitempty,min=0"`
	ServiceFee  *float64  `json:"service_fee,omitempty" validate:"omitempty,min=0"`
	Total       *float64  `json:"total,omitempty" validate:"omitempty,gt=0"`
}

// TransitionRequest asks the engine to move a booking to a new status.
type TransitionRequest struct {
	Status BookingStatus `json:"status" validate:"required,booking_status"`
	Reason string        `json:"reason,omitempty" validate:"omitempty,max=500"`
}
