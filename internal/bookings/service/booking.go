package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	bookingserrors "smartstay/internal/bookings/errors"
	"smartstay/internal/bookings/repository"
	"smartstay/internal/bookings/validator"
	"smartstay/pkg/config"
	apperrors "smartstay/pkg/errors"
	"smartstay/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// PropertyProvider supplies property records for capacity and pricing
// decisions. Satisfied by the properties service.
type PropertyProvider interface {
	GetByID(ctx context.Context, id string) (*model.Property, error)
}

// Notifier dispatches booking lifecycle notifications. Dispatch is
// fire-and-forget: implementations must never fail a booking mutation.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingConfirmed(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, booking *model.Booking, reason string)
	PaymentReceived(ctx context.Context, booking *model.Booking)
	RefundProcessed(ctx context.Context, booking *model.Booking)
}

type BookingService interface {
	Create(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error)
	Quote(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error)
	CheckAvailability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	List(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error)
	Transition(ctx context.Context, actor model.Actor, id string, req *model.TransitionRequest) (*model.Booking, error)

	// Payment-facing operations, driven by the webhook reconciler.
	GetBySessionID(ctx context.Context, sessionID string) (*model.Booking, error)
	AttachCheckoutSession(ctx context.Context, bookingID string, sessionID string) error
	ConfirmPayment(ctx context.Context, bookingID string, paymentIntentID string) (bool, error)
	CreateFromPayment(ctx context.Context, booking *model.Booking) error
}

type bookingService struct {
	repo       repository.BookingRepository
	lockRepo   repository.BookingLockRepository
	validator  *validator.BookingValidator
	properties PropertyProvider
	notifier   Notifier
	refunder   Refunder
	cfg        *config.Config
	now        func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	bookingValidator *validator.BookingValidator,
	properties PropertyProvider,
	notifier Notifier,
	refunder Refunder,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		lockRepo:   lockRepo,
		validator:  bookingValidator,
		properties: properties,
		notifier:   notifier,
		refunder:   refunder,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Quote builds a fully priced booking without persisting it. The checkout
// flow uses it to price a stay before any record exists.
func (s *bookingService) Quote(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	if property.HostID == actor.ID {
		return nil, apperrors.InvalidInput("Hosts cannot book their own property")
	}
	if req.Guests > property.MaxGuests {
		return nil, apperrors.Validation("Guest count exceeds property capacity", map[string]any{
			"guests":     req.Guests,
			"max_guests": property.MaxGuests,
		})
	}

	price, err := s.computePrice(req, property)
	if err != nil {
		return nil, err
	}

	return &model.Booking{
		PropertyID:    property.ID,
		GuestID:       actor.ID,
		GuestEmail:    actor.Email,
		HostID:        property.HostID,
		HostEmail:     property.HostEmail,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Guests:        req.Guests,
		Price:         *price,
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentUnpaid,
	}, nil
}

func (s *bookingService) Create(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
	booking, err := s.Quote(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	if err := s.createGuarded(ctx, booking); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"property_id", booking.PropertyID,
		"guest_id", booking.GuestID,
		"check_in", booking.CheckIn,
		"check_out", booking.CheckOut,
	)

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, booking)
	}
	return booking, nil
}

// CreateFromPayment inserts a booking materialized by a completed checkout.
// The caller sets status and payment fields; capacity and availability are
// re-verified here, under the same lock and transaction as guest-initiated
// creation, since both were unguarded while the guest sat on the payment page.
func (s *bookingService) CreateFromPayment(ctx context.Context, booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Payment booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	property, err := s.properties.GetByID(ctx, booking.PropertyID)
	if err != nil {
		return err
	}
	if booking.Guests > property.MaxGuests {
		return apperrors.Validation("Guest count exceeds property capacity", map[string]any{
			"guests":     booking.Guests,
			"max_guests": property.MaxGuests,
		})
	}

	if err := s.createGuarded(ctx, booking); err != nil {
		return err
	}

	s.cfg.Log.Info("Booking created from completed payment",
		"id", booking.ID,
		"property_id", booking.PropertyID,
		"checkout_session_id", booking.CheckoutSessionID,
	)

	if s.notifier != nil {
		s.notifier.PaymentReceived(ctx, booking)
		if booking.Status == model.BookingConfirmed {
			s.notifier.BookingConfirmed(ctx, booking)
		}
	}
	return nil
}

// createGuarded serializes creation per property with an advisory lock, then
// re-checks overlap and inserts inside one transaction.
func (s *bookingService) createGuarded(ctx context.Context, booking *model.Booking) error {
	lockID, err := s.acquirePropertyLock(ctx, booking.PropertyID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releasePropertyLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyAvailable(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "property_id", booking.PropertyID, "error", err)
		return err
	}
	return nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	if propertyID == "" {
		return false, apperrors.InvalidInput("Property ID cannot be empty")
	}
	if !checkOut.After(checkIn) {
		return false, apperrors.InvalidInput("check_out must be after check_in")
	}

	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return false, err
	}

	overlapping, err := s.repo.FindOverlapping(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return false, apperrors.Internal("Failed to check availability", err)
	}

	return len(overlapping) == 0, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	booking, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canView(actor, booking) {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}

	return booking, nil
}

func (s *bookingService) GetBySessionID(ctx context.Context, sessionID string) (*model.Booking, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	booking, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("No booking for checkout session")
		}
		return nil, apperrors.Internal("Failed to retrieve booking by session", err)
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		switch {
		case actor.IsAdmin():
			count, err = s.repo.Count(ctx)
		case actor.Role == model.RoleHost:
			count, err = s.repo.CountByHost(ctx, actor.ID)
		default:
			count, err = s.repo.CountByGuest(ctx, actor.ID)
		}
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "actor_id", actor.ID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		switch {
		case actor.IsAdmin():
			bookings, err = s.repo.FindAll(ctx, limit, offset)
		case actor.Role == model.RoleHost:
			bookings, err = s.repo.FindByHost(ctx, actor.ID, limit, offset)
		default:
			bookings, err = s.repo.FindByGuest(ctx, actor.ID, limit, offset)
		}
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "actor_id", actor.ID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) AttachCheckoutSession(ctx context.Context, bookingID string, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}

	if err := s.repo.AttachCheckoutSession(ctx, bookingID, sessionID); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to attach checkout session", err)
	}
	return nil
}

// ConfirmPayment marks the booking paid. The booking's lifecycle status is
// untouched; confirmation stays with the host. Returns false when the booking
// was already paid, which lets webhook replays pass through without side
// effects.
func (s *bookingService) ConfirmPayment(ctx context.Context, bookingID string, paymentIntentID string) (bool, error) {
	err := s.repo.MarkPaid(ctx, bookingID, paymentIntentID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrAlreadyPaid) {
			s.cfg.Log.Info("Payment already recorded, skipping", "booking_id", bookingID)
			return false, nil
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return false, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return false, apperrors.InvalidInput("Invalid booking ID format")
		}
		return false, apperrors.Internal("Failed to mark booking paid", err)
	}

	booking, findErr := s.findByID(ctx, bookingID)
	if findErr == nil && s.notifier != nil {
		s.notifier.PaymentReceived(ctx, booking)
	}

	s.cfg.Log.Info("Booking payment confirmed", "booking_id", bookingID, "payment_intent_id", paymentIntentID)
	return true, nil
}

// --- Helpers ---

func (s *bookingService) findByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func canView(actor model.Actor, booking *model.Booking) bool {
	if actor.IsAdmin() {
		return true
	}
	return booking.GuestID == actor.ID || booking.HostID == actor.ID
}

// computePrice derives the price breakdown. A stay spans at least one night;
// partial nights round up. Client-supplied totals are cross-checked rather
// than trusted.
func (s *bookingService) computePrice(req *model.BookingRequest, property *model.Property) (*model.PriceBreakdown, error) {
	nights := Nights(req.CheckIn, req.CheckOut)

	cleaning := s.cfg.DefaultCleaningFee
	if req.CleaningFee != nil {
		cleaning = *req.CleaningFee
	}
	serviceFee := s.cfg.DefaultServiceFee
	if req.ServiceFee != nil {
		serviceFee = *req.ServiceFee
	}

	total := float64(nights)*property.PricePerNight + cleaning + serviceFee

	if req.Total != nil && math.Abs(*req.Total-total) > 0.01 {
		return nil, apperrors.Validation("Submitted total does not match computed price", map[string]any{
			"submitted": *req.Total,
			"computed":  total,
		})
	}

	return &model.PriceBreakdown{
		PricePerNight: property.PricePerNight,
		Nights:        nights,
		CleaningFee:   cleaning,
		ServiceFee:    serviceFee,
		Total:         total,
	}, nil
}

// Nights counts billable nights in [checkIn, checkOut). Partial nights round
// up and every stay bills at least one night.
func Nights(checkIn, checkOut time.Time) int {
	span := checkOut.Sub(checkIn)
	nights := int(math.Ceil(span.Hours() / 24))
	if nights < 1 {
		nights = 1
	}
	return nights
}

func (s *bookingService) verifyAvailable(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindOverlapping(ctx, booking.PropertyID, booking.CheckIn, booking.CheckOut)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.ID == booking.ID {
			continue
		}
		return apperrors.Conflict(fmt.Sprintf(
			"Dates overlap an existing booking (%s - %s)",
			b.CheckIn.Format("2006-01-02"),
			b.CheckOut.Format("2006-01-02"),
		))
	}
	return nil
}

// acquirePropertyLock takes the advisory per-property lock that serializes
// all creations touching the property.
func (s *bookingService) acquirePropertyLock(ctx context.Context, propertyID string) (string, error) {
	lockID := fmt.Sprintf("booking_lock_%s", propertyID)

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(s.cfg.BookingLockTTL),
	}

	_, err := s.lockRepo.Acquire(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This property is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releasePropertyLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Release(ctx, lockID)
}
