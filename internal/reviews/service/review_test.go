package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	bookingserrors "smartstay/internal/bookings/errors"
	reviewserrors "smartstay/internal/reviews/errors"
	"smartstay/internal/reviews/validator"
	"smartstay/pkg/config"
	apperrors "smartstay/pkg/errors"
	"smartstay/pkg/logger"
	"smartstay/pkg/model"
)

const (
	testBookingID  = "64f0c1a2b3d4e5f601234521"
	testPropertyID = "64f0c1a2b3d4e5f601234522"
	testGuestID    = "64f0c1a2b3d4e5f601234523"
)

var (
	guestActor = model.Actor{ID: testGuestID, Email: "guest@example.com", Role: model.RoleGuest}
	adminActor = model.Actor{ID: "64f0c1a2b3d4e5f601234524", Email: "admin@example.com", Role: model.RoleAdmin}
)

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard, Service: "test"}),
	}
}

// --- Mocks ---

type mockReviewRepo struct {
	reviews   map[string]*model.Review
	byBooking map[string]*model.Review
	seq       int
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{
		reviews:   make(map[string]*model.Review),
		byBooking: make(map[string]*model.Review),
	}
}

func (r *mockReviewRepo) Create(ctx context.Context, review *model.Review) error {
	if _, exists := r.byBooking[review.BookingID]; exists {
		return reviewserrors.ErrDuplicate
	}
	r.seq++
	review.ID = fmt.Sprintf("%024x", r.seq)
	r.reviews[review.ID] = review
	r.byBooking[review.BookingID] = review
	return nil
}

func (r *mockReviewRepo) FindByID(ctx context.Context, id string) (*model.Review, error) {
	review, ok := r.reviews[id]
	if !ok {
		return nil, reviewserrors.ErrNotFound
	}
	return review, nil
}

func (r *mockReviewRepo) FindByBooking(ctx context.Context, bookingID string) (*model.Review, error) {
	review, ok := r.byBooking[bookingID]
	if !ok {
		return nil, reviewserrors.ErrNotFound
	}
	return review, nil
}

func (r *mockReviewRepo) FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Review, error) {
	var out []*model.Review
	for _, review := range r.reviews {
		if review.PropertyID == propertyID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (r *mockReviewRepo) CountByProperty(ctx context.Context, propertyID string) (int64, error) {
	reviews, _ := r.FindByProperty(ctx, propertyID, 0, 0)
	return int64(len(reviews)), nil
}

func (r *mockReviewRepo) AverageRating(ctx context.Context, propertyID string) (float64, error) {
	reviews, _ := r.FindByProperty(ctx, propertyID, 0, 0)
	if len(reviews) == 0 {
		return 0, nil
	}
	var sum int
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews)), nil
}

func (r *mockReviewRepo) Delete(ctx context.Context, id string) error {
	review, ok := r.reviews[id]
	if !ok {
		return reviewserrors.ErrNotFound
	}
	delete(r.reviews, id)
	delete(r.byBooking, review.BookingID)
	return nil
}

type mockBookingStore struct {
	bookings map[string]*model.Booking
}

func newMockBookingStore() *mockBookingStore {
	return &mockBookingStore{bookings: make(map[string]*model.Booking)}
}

func (s *mockBookingStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return b, nil
}

func (s *mockBookingStore) SetReviewed(ctx context.Context, id string, reviewed bool) error {
	b, ok := s.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.Reviewed = reviewed
	return nil
}

func newTestService(t *testing.T) (ReviewService, *mockReviewRepo, *mockBookingStore) {
	t.Helper()
	cfg := testConfig()
	repo := newMockReviewRepo()
	bookings := newMockBookingStore()
	svc := NewReviewService(repo, bookings, validator.NewReviewValidator(cfg.Log), cfg)
	return svc, repo, bookings
}

func completedBooking() *model.Booking {
	return &model.Booking{
		ID:         testBookingID,
		PropertyID: testPropertyID,
		GuestID:    testGuestID,
		GuestEmail: "guest@example.com",
		Status:     model.BookingCompleted,
	}
}

func expectStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != status {
		t.Fatalf("expected status %d, got %d (%v)", status, appErr.HTTPStatus, err)
	}
}

// --- Tests ---

func TestCreateReview(t *testing.T) {
	svc, _, bookings := newTestService(t)
	bookings.bookings[testBookingID] = completedBooking()

	review, err := svc.Create(context.Background(), guestActor, &ReviewRequest{
		BookingID: testBookingID,
		Rating:    5,
		Comment:   "  Lovely   stay!  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if review.PropertyID != testPropertyID {
		t.Errorf("expected property carried over, got %q", review.PropertyID)
	}
	if review.Comment != "Lovely stay!" {
		t.Errorf("expected comment whitespace collapsed, got %q", review.Comment)
	}
	if !bookings.bookings[testBookingID].Reviewed {
		t.Error("expected booking flagged as reviewed")
	}
}

func TestCreateReviewRequiresCompletedStay(t *testing.T) {
	for _, status := range []model.BookingStatus{
		model.BookingPending, model.BookingConfirmed, model.BookingCheckedIn, model.BookingCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			svc, _, bookings := newTestService(t)
			b := completedBooking()
			b.Status = status
			bookings.bookings[testBookingID] = b

			_, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: testBookingID, Rating: 4})
			expectStatus(t, err, 409)
		})
	}
}

func TestCreateReviewOnlyGuest(t *testing.T) {
	svc, _, bookings := newTestService(t)
	bookings.bookings[testBookingID] = completedBooking()

	stranger := model.Actor{ID: "64f0c1a2b3d4e5f601234599", Email: "other@example.com", Role: model.RoleGuest}
	_, err := svc.Create(context.Background(), stranger, &ReviewRequest{BookingID: testBookingID, Rating: 4})
	expectStatus(t, err, 403)
}

func TestCreateReviewRejectsDuplicate(t *testing.T) {
	svc, _, bookings := newTestService(t)
	bookings.bookings[testBookingID] = completedBooking()

	if _, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: testBookingID, Rating: 4}); err != nil {
		t.Fatalf("first review failed: %v", err)
	}

	_, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: testBookingID, Rating: 2})
	expectStatus(t, err, 409)
}

func TestCreateReviewUnknownBooking(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: testBookingID, Rating: 4})
	expectStatus(t, err, 404)
}

func TestCreateReviewRejectsBadRating(t *testing.T) {
	svc, _, bookings := newTestService(t)
	bookings.bookings[testBookingID] = completedBooking()

	_, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: testBookingID, Rating: 6})
	expectStatus(t, err, 422)
}

func TestListByPropertyAverages(t *testing.T) {
	svc, _, bookings := newTestService(t)

	for i, rating := range []int{5, 3} {
		id := fmt.Sprintf("64f0c1a2b3d4e5f60123452%d", i)
		b := completedBooking()
		b.ID = id
		bookings.bookings[id] = b
		if _, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: id, Rating: rating}); err != nil {
			t.Fatalf("seed review failed: %v", err)
		}
	}

	page, total, err := svc.ListByProperty(context.Background(), testPropertyID, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(page.Reviews) != 2 {
		t.Errorf("expected 2 reviews, got total=%d len=%d", total, len(page.Reviews))
	}
	if page.AverageRating != 4 {
		t.Errorf("expected average 4, got %.2f", page.AverageRating)
	}
}

func TestDeleteReviewReopensBooking(t *testing.T) {
	svc, _, bookings := newTestService(t)
	bookings.bookings[testBookingID] = completedBooking()

	review, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: testBookingID, Rating: 4})
	if err != nil {
		t.Fatalf("seed review failed: %v", err)
	}

	if err := svc.Delete(context.Background(), guestActor, review.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookings.bookings[testBookingID].Reviewed {
		t.Error("expected reviewed flag cleared")
	}

	// The booking can be reviewed again.
	if _, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: testBookingID, Rating: 3}); err != nil {
		t.Fatalf("re-review after delete failed: %v", err)
	}
}

func TestDeleteReviewAuthorOnly(t *testing.T) {
	svc, _, bookings := newTestService(t)
	bookings.bookings[testBookingID] = completedBooking()

	review, err := svc.Create(context.Background(), guestActor, &ReviewRequest{BookingID: testBookingID, Rating: 4})
	if err != nil {
		t.Fatalf("seed review failed: %v", err)
	}

	stranger := model.Actor{ID: "64f0c1a2b3d4e5f601234599", Email: "other@example.com", Role: model.RoleGuest}
	err = svc.Delete(context.Background(), stranger, review.ID)
	expectStatus(t, err, 403)

	if err := svc.Delete(context.Background(), adminActor, review.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}
