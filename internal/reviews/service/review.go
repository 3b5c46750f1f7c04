package service

import (
	"context"
	"errors"
	"sync"

	bookingserrors "smartstay/internal/bookings/errors"
	reviewserrors "smartstay/internal/reviews/errors"
	"smartstay/internal/reviews/repository"
	"smartstay/internal/reviews/validator"
	"smartstay/pkg/config"
	apperrors "smartstay/pkg/errors"
	"smartstay/pkg/model"
	"smartstay/pkg/sanitizer"
)

// BookingStore is the slice of the booking repository the review lifecycle
// needs: eligibility lookup and the reviewed flag.
type BookingStore interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	SetReviewed(ctx context.Context, id string, reviewed bool) error
}

// ReviewRequest is what a guest submits for a completed stay.
type ReviewRequest struct {
	BookingID string `json:"booking_id" validate:"required,mongodb"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// PropertyReviews bundles a review page with the property's rating summary.
type PropertyReviews struct {
	Reviews       []*model.Review `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
}

type ReviewService interface {
	Create(ctx context.Context, actor model.Actor, req *ReviewRequest) (*model.Review, error)
	GetByID(ctx context.Context, id string) (*model.Review, error)
	ListByProperty(ctx context.Context, propertyID string, limit int, offset int64) (*PropertyReviews, int64, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type reviewService struct {
	repo      repository.ReviewRepository
	bookings  BookingStore
	validator *validator.ReviewValidator
	cfg       *config.Config
}

func NewReviewService(
	repo repository.ReviewRepository,
	bookings BookingStore,
	reviewValidator *validator.ReviewValidator,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:      repo,
		bookings:  bookings,
		validator: reviewValidator,
		cfg:       cfg,
	}
}

// Create accepts a review only from the guest of a completed, not yet
// reviewed booking. The unique index on booking_id backs the in-flight race.
func (s *reviewService) Create(ctx context.Context, actor model.Actor, req *ReviewRequest) (*model.Review, error) {
	booking, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", req.BookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to look up booking", err)
	}

	if booking.GuestID != actor.ID {
		return nil, apperrors.Forbidden("Only the guest of the stay can review it")
	}
	if booking.Status != model.BookingCompleted {
		return nil, apperrors.Conflict("Only completed stays can be reviewed")
	}
	if booking.Reviewed {
		return nil, apperrors.Conflict("This booking has already been reviewed")
	}

	review := &model.Review{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		GuestEmail: actor.Email,
		Rating:     req.Rating,
		Comment:    sanitizer.SanitizeFreeText(req.Comment),
	}

	if err := s.validator.Validate(review); err != nil {
		s.cfg.Log.Warn("Review validation failed", "booking_id", req.BookingID, "error", err)
		return nil, apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, reviewserrors.ErrDuplicate) {
			return nil, apperrors.Conflict("This booking has already been reviewed")
		}
		s.cfg.Log.Error("Failed to create review", "booking_id", req.BookingID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	if err := s.bookings.SetReviewed(ctx, booking.ID, true); err != nil {
		// The review exists; the flag is a convenience denormalization and
		// the unique index still blocks duplicates.
		s.cfg.Log.Error("Failed to flag booking as reviewed", "booking_id", booking.ID, "error", err)
	}

	s.cfg.Log.Info("Review created successfully",
		"id", review.ID,
		"booking_id", review.BookingID,
		"property_id", review.PropertyID,
		"rating", review.Rating,
	)
	return review, nil
}

func (s *reviewService) GetByID(ctx context.Context, id string) (*model.Review, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Review ID cannot be empty")
	}

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reviewserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Review", id)
		}
		if errors.Is(err, reviewserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid review ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve review", err)
	}

	return review, nil
}

func (s *reviewService) ListByProperty(ctx context.Context, propertyID string, limit int, offset int64) (*PropertyReviews, int64, error) {
	if propertyID == "" {
		return nil, 0, apperrors.InvalidInput("Property ID cannot be empty")
	}

	var count int64
	var average float64
	var reviews []*model.Review
	var errCount, errFind, errAvg error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByProperty(ctx, propertyID)
		if err != nil {
			s.cfg.Log.Error("Failed to count reviews", "property_id", propertyID, "error", err)
			errCount = apperrors.Internal("Failed to count reviews", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reviews, err = s.repo.FindByProperty(ctx, propertyID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list reviews", "property_id", propertyID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve reviews", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		average, err = s.repo.AverageRating(ctx, propertyID)
		if err != nil {
			s.cfg.Log.Error("Failed to average ratings", "property_id", propertyID, "error", err)
			errAvg = apperrors.Internal("Failed to compute rating", err)
		}
	}()

	wg.Wait()
	for _, err := range []error{errCount, errFind, errAvg} {
		if err != nil {
			return nil, 0, err
		}
	}

	return &PropertyReviews{Reviews: reviews, AverageRating: average}, count, nil
}

// Delete removes a review and reopens the booking for reviewing. Only the
// author or an admin may delete.
func (s *reviewService) Delete(ctx context.Context, actor model.Actor, id string) error {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && review.GuestEmail != actor.Email {
		return apperrors.Forbidden("Only the review author can delete it")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, reviewserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Review", id)
		}
		return apperrors.Internal("Failed to delete review", err)
	}

	if err := s.bookings.SetReviewed(ctx, review.BookingID, false); err != nil {
		s.cfg.Log.Error("Failed to clear reviewed flag", "booking_id", review.BookingID, "error", err)
	}

	s.cfg.Log.Info("Review deleted successfully", "id", id, "booking_id", review.BookingID)
	return nil
}
