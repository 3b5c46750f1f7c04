package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	bookingserrors "smartstay/internal/bookings/errors"
	"smartstay/internal/bookings/validator"
	"smartstay/pkg/config"
	mongotx "smartstay/pkg/db/mongo"
	apperrors "smartstay/pkg/errors"
	"smartstay/pkg/logger"
	"smartstay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testPropertyID = "64f0c1a2b3d4e5f601234501"
	testGuestID    = "64f0c1a2b3d4e5f601234502"
	testHostID     = "64f0c1a2b3d4e5f601234503"
	testAdminID    = "64f0c1a2b3d4e5f601234504"
)

var (
	guestActor = model.Actor{ID: testGuestID, Email: "guest@example.com", Role: model.RoleGuest}
	hostActor  = model.Actor{ID: testHostID, Email: "host@example.com", Role: model.RoleHost}
	adminActor = model.Actor{ID: testAdminID, Email: "admin@example.com", Role: model.RoleAdmin}
)

func testConfig() *config.Config {
	return &config.Config{
		Log:                logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard, Service: "test"}),
		DefaultCleaningFee: 25,
		DefaultServiceFee:  15,
		Currency:           "usd",
		GuestCancelCutoff:  24 * time.Hour,
		BookingLockTTL:     30 * time.Second,
	}
}

// --- Mocks ---

type mockBookingRepo struct {
	bookings map[string]*model.Booking
	seq      int

	createErr      error
	overlappingErr error
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (r *mockBookingRepo) add(b *model.Booking) *model.Booking {
	if b.ID == "" {
		r.seq++
		b.ID = fmt.Sprintf("%024x", r.seq)
	}
	r.bookings[b.ID] = b
	return b
}

func (r *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	r.add(booking)
	return nil
}

func (r *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *mockBookingRepo) FindOverlapping(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]*model.Booking, error) {
	if r.overlappingErr != nil {
		return nil, r.overlappingErr
	}
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.PropertyID != propertyID || b.Status == model.BookingCancelled {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *mockBookingRepo) FindBySessionID(ctx context.Context, sessionID string) (*model.Booking, error) {
	for _, b := range r.bookings {
		if b.CheckoutSessionID == sessionID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *mockBookingRepo) FindByGuest(ctx context.Context, guestID string, limit int, offset int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.GuestID == guestID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *mockBookingRepo) CountByGuest(ctx context.Context, guestID string) (int64, error) {
	bs, _ := r.FindByGuest(ctx, guestID, 0, 0)
	return int64(len(bs)), nil
}

func (r *mockBookingRepo) FindByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.HostID == hostID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *mockBookingRepo) CountByHost(ctx context.Context, hostID string) (int64, error) {
	bs, _ := r.FindByHost(ctx, hostID, 0, 0)
	return int64(len(bs)), nil
}

func (r *mockBookingRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (r *mockBookingRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.bookings)), nil
}

func (r *mockBookingRepo) ApplyTransition(ctx context.Context, id string, from, to model.BookingStatus, extra bson.M) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if b.Status != from {
		return bookingserrors.ErrStatusConflict
	}
	b.Status = to
	if t, ok := extra["cancelled_at"].(time.Time); ok {
		b.CancelledAt = &t
	}
	if t, ok := extra["refunded_at"].(time.Time); ok {
		b.RefundedAt = &t
	}
	if v, ok := extra["refund_id"].(string); ok {
		b.RefundID = v
	}
	if v, ok := extra["refund_status"].(string); ok {
		b.RefundStatus = v
	}
	return nil
}

func (r *mockBookingRepo) AttachCheckoutSession(ctx context.Context, id string, sessionID string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.CheckoutSessionID = sessionID
	return nil
}

func (r *mockBookingRepo) MarkPaid(ctx context.Context, id string, paymentIntentID string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if b.PaymentStatus != model.PaymentUnpaid {
		return bookingserrors.ErrAlreadyPaid
	}
	now := time.Now()
	b.PaymentStatus = model.PaymentPaid
	b.PaymentIntentID = paymentIntentID
	b.PaidAt = &now
	return nil
}

func (r *mockBookingRepo) SetRefund(ctx context.Context, id string, refundID string, refundStatus string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.RefundID = refundID
	b.RefundStatus = refundStatus
	return nil
}

func (r *mockBookingRepo) SetReviewed(ctx context.Context, id string, reviewed bool) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.Reviewed = reviewed
	return nil
}

func (r *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepo struct {
	held     map[string]bool
	releases []string
}

func newMockLockRepo() *mockLockRepo {
	return &mockLockRepo{held: make(map[string]bool)}
}

func (r *mockLockRepo) Acquire(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	if r.held[lock.ID] {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	r.held[lock.ID] = true
	return lock, nil
}

func (r *mockLockRepo) Release(ctx context.Context, lockID string) error {
	delete(r.held, lockID)
	r.releases = append(r.releases, lockID)
	return nil
}

type mockProperties struct {
	property *model.Property
	err      error
}

func (p *mockProperties) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.property == nil || p.property.ID != id {
		return nil, apperrors.NotFoundWithID("Property", id)
	}
	return p.property, nil
}

type mockNotifier struct {
	events []string
}

func (n *mockNotifier) BookingCreated(ctx context.Context, b *model.Booking)   { n.record("created") }
func (n *mockNotifier) BookingConfirmed(ctx context.Context, b *model.Booking) { n.record("confirmed") }
func (n *mockNotifier) BookingCancelled(ctx context.Context, b *model.Booking, reason string) {
	n.record("cancelled")
}
func (n *mockNotifier) PaymentReceived(ctx context.Context, b *model.Booking) { n.record("payment") }
func (n *mockNotifier) RefundProcessed(ctx context.Context, b *model.Booking) { n.record("refund") }

func (n *mockNotifier) record(event string) { n.events = append(n.events, event) }

type mockRefunder struct {
	refundID string
	status   string
	err      error
	calls    int
}

func (r *mockRefunder) Refund(ctx context.Context, paymentIntentID string) (string, string, error) {
	r.calls++
	if r.err != nil {
		return "", "", r.err
	}
	return r.refundID, r.status, nil
}

type fixture struct {
	repo     *mockBookingRepo
	locks    *mockLockRepo
	notifier *mockNotifier
	refunder *mockRefunder
	cfg      *config.Config
	svc      *bookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	repo := newMockBookingRepo()
	locks := newMockLockRepo()
	notifier := &mockNotifier{}
	refunder := &mockRefunder{refundID: "re_1", status: "succeeded"}
	properties := &mockProperties{property: testProperty()}

	svc := NewBookingService(
		repo,
		locks,
		validator.NewBookingValidator(cfg.Log),
		properties,
		notifier,
		refunder,
		cfg,
	).(*bookingService)

	return &fixture{repo: repo, locks: locks, notifier: notifier, refunder: refunder, cfg: cfg, svc: svc}
}

func testProperty() *model.Property {
	return &model.Property{
		ID:            testPropertyID,
		HostID:        testHostID,
		HostEmail:     "host@example.com",
		Title:         "Seaside Loft",
		PricePerNight: 120,
		MaxGuests:     4,
	}
}

func testRequest(checkIn, checkOut time.Time) *model.BookingRequest {
	return &model.BookingRequest{
		PropertyID: testPropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
	}
}

func futureDate(day int) time.Time {
	return time.Date(2027, 6, day, 15, 0, 0, 0, time.UTC)
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

func TestNights(t *testing.T) {
	base := futureDate(1)
	tests := []struct {
		name     string
		checkOut time.Time
		want     int
	}{
		{"four full days", base.AddDate(0, 0, 4), 4},
		{"same day stay bills one night", base.Add(2 * time.Hour), 1},
		{"partial night rounds up", base.Add(36 * time.Hour), 2},
		{"one night", base.AddDate(0, 0, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nights(base, tt.checkOut); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCreateComputesPrice(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(4)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Price.Nights != 3 {
		t.Errorf("expected 3 nights, got %d", booking.Price.Nights)
	}
	want := 3*120.0 + 25 + 15
	if booking.Price.Total != want {
		t.Errorf("expected total %.2f, got %.2f", want, booking.Price.Total)
	}
	if booking.Status != model.BookingPending {
		t.Errorf("expected pending status, got %s", booking.Status)
	}
	if booking.PaymentStatus != model.PaymentUnpaid {
		t.Errorf("expected unpaid, got %s", booking.PaymentStatus)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != "created" {
		t.Errorf("expected created notification, got %v", f.notifier.events)
	}
	if len(f.locks.releases) != 1 {
		t.Errorf("expected lock release, got %v", f.locks.releases)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(5))); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	_, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(4), futureDate(8)))
	expectStatus(t, err, 409)
}

func TestCreateAllowsBackToBack(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(5))); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// Check-out day equals check-in day: half-open intervals do not overlap.
	if _, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(5), futureDate(8))); err != nil {
		t.Fatalf("back-to-back booking rejected: %v", err)
	}
}

func TestCreateIgnoresCancelledOverlap(t *testing.T) {
	f := newFixture(t)

	f.repo.add(&model.Booking{
		PropertyID: testPropertyID,
		GuestID:    testGuestID,
		HostID:     testHostID,
		CheckIn:    futureDate(1),
		CheckOut:   futureDate(5),
		Status:     model.BookingCancelled,
	})

	if _, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(2), futureDate(6))); err != nil {
		t.Fatalf("cancelled booking should not block dates: %v", err)
	}
}

func TestCreateRejectsOverCapacity(t *testing.T) {
	f := newFixture(t)

	req := testRequest(futureDate(1), futureDate(3))
	req.Guests = 5

	_, err := f.svc.Create(context.Background(), guestActor, req)
	expectStatus(t, err, 422)
}

func TestCreateRejectsHostOwnProperty(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), hostActor, testRequest(futureDate(1), futureDate(3)))
	expectStatus(t, err, 400)
}

func TestCreateRejectsTotalMismatch(t *testing.T) {
	f := newFixture(t)

	req := testRequest(futureDate(1), futureDate(4))
	wrong := 100.0
	req.Total = &wrong

	_, err := f.svc.Create(context.Background(), guestActor, req)
	expectStatus(t, err, 422)
}

func TestCreateAcceptsMatchingTotal(t *testing.T) {
	f := newFixture(t)

	req := testRequest(futureDate(1), futureDate(4))
	total := 3*120.0 + 25 + 15
	req.Total = &total

	if _, err := f.svc.Create(context.Background(), guestActor, req); err != nil {
		t.Fatalf("matching total rejected: %v", err)
	}
}

func TestCreateRejectsPastCheckIn(t *testing.T) {
	f := newFixture(t)

	req := testRequest(time.Now().AddDate(0, 0, -2), time.Now().AddDate(0, 0, 2))
	_, err := f.svc.Create(context.Background(), guestActor, req)
	expectStatus(t, err, 422)
}

func TestCreateLockContention(t *testing.T) {
	f := newFixture(t)
	f.locks.held["booking_lock_"+testPropertyID] = true

	_, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(3)))
	expectStatus(t, err, 409)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)

	free, err := f.svc.CheckAvailability(context.Background(), testPropertyID, futureDate(1), futureDate(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !free {
		t.Error("expected dates to be available")
	}

	if _, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(5))); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	free, err = f.svc.CheckAvailability(context.Background(), testPropertyID, futureDate(3), futureDate(6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if free {
		t.Error("expected dates to be taken")
	}
}

func TestCheckAvailabilityRejectsBadRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckAvailability(context.Background(), testPropertyID, futureDate(5), futureDate(5))
	expectStatus(t, err, 400)
}

func TestGetByIDAccessControl(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(3)))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	for _, actor := range []model.Actor{guestActor, hostActor, adminActor} {
		if _, err := f.svc.GetByID(context.Background(), actor, booking.ID); err != nil {
			t.Errorf("actor %s should see the booking: %v", actor.Role, err)
		}
	}

	stranger := model.Actor{ID: "64f0c1a2b3d4e5f601234599", Email: "other@example.com", Role: model.RoleGuest}
	_, err = f.svc.GetByID(context.Background(), stranger, booking.ID)
	expectStatus(t, err, 403)
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(3)))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	f.notifier.events = nil

	flipped, err := f.svc.ConfirmPayment(context.Background(), booking.ID, "pi_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flipped {
		t.Fatal("expected first confirmation to apply")
	}

	stored := f.repo.bookings[booking.ID]
	if stored.Status != model.BookingPending {
		t.Errorf("payment must not move the lifecycle status, got %s", stored.Status)
	}
	if stored.PaymentStatus != model.PaymentPaid {
		t.Errorf("expected paid, got %s", stored.PaymentStatus)
	}
	if stored.PaymentIntentID != "pi_123" {
		t.Errorf("expected payment intent recorded, got %q", stored.PaymentIntentID)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != "payment" {
		t.Errorf("expected only the payment notification, got %v", f.notifier.events)
	}
}

func TestConfirmPaymentReplayIsNoop(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(3)))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	if _, err := f.svc.ConfirmPayment(context.Background(), booking.ID, "pi_123"); err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}
	f.notifier.events = nil

	flipped, err := f.svc.ConfirmPayment(context.Background(), booking.ID, "pi_123")
	if err != nil {
		t.Fatalf("replay must not fail: %v", err)
	}
	if flipped {
		t.Error("expected replay to be reported as a no-op")
	}
	if len(f.notifier.events) != 0 {
		t.Errorf("replay must not notify again, got %v", f.notifier.events)
	}
}

func TestConfirmPaymentUnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ConfirmPayment(context.Background(), "64f0c1a2b3d4e5f601234599", "pi_123")
	expectStatus(t, err, 404)
}

func TestCreateFromPaymentVerifiesAvailability(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(5))); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	booking := &model.Booking{
		PropertyID:        testPropertyID,
		GuestID:           testGuestID,
		GuestEmail:        "guest@example.com",
		HostID:            testHostID,
		HostEmail:         "host@example.com",
		CheckIn:           futureDate(3),
		CheckOut:          futureDate(7),
		Guests:            2,
		Price:             model.PriceBreakdown{PricePerNight: 120, Nights: 4, CleaningFee: 25, ServiceFee: 15, Total: 520},
		Status:            model.BookingConfirmed,
		PaymentStatus:     model.PaymentPaid,
		CheckoutSessionID: "cs_1",
		PaymentIntentID:   "pi_1",
	}

	err := f.svc.CreateFromPayment(context.Background(), booking)
	expectStatus(t, err, 409)
}

func TestCreateFromPaymentNotifies(t *testing.T) {
	f := newFixture(t)

	booking := &model.Booking{
		PropertyID:        testPropertyID,
		GuestID:           testGuestID,
		GuestEmail:        "guest@example.com",
		HostID:            testHostID,
		HostEmail:         "host@example.com",
		CheckIn:           futureDate(3),
		CheckOut:          futureDate(7),
		Guests:            2,
		Price:             model.PriceBreakdown{PricePerNight: 120, Nights: 4, CleaningFee: 25, ServiceFee: 15, Total: 520},
		Status:            model.BookingConfirmed,
		PaymentStatus:     model.PaymentPaid,
		CheckoutSessionID: "cs_1",
		PaymentIntentID:   "pi_1",
	}

	if err := f.svc.CreateFromPayment(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ID == "" {
		t.Error("expected booking to be persisted with an id")
	}
	if len(f.notifier.events) != 2 || f.notifier.events[0] != "payment" || f.notifier.events[1] != "confirmed" {
		t.Errorf("expected payment then confirmed notifications, got %v", f.notifier.events)
	}
}

func TestCreateFromPaymentRejectsOverCapacity(t *testing.T) {
	f := newFixture(t)

	// Capacity can shrink between checkout creation and webhook delivery;
	// the materialized booking must be checked against the property again.
	booking := &model.Booking{
		PropertyID:        testPropertyID,
		GuestID:           testGuestID,
		GuestEmail:        "guest@example.com",
		HostID:            testHostID,
		HostEmail:         "host@example.com",
		CheckIn:           futureDate(3),
		CheckOut:          futureDate(7),
		Guests:            50,
		Price:             model.PriceBreakdown{PricePerNight: 120, Nights: 4, CleaningFee: 25, ServiceFee: 15, Total: 520},
		Status:            model.BookingConfirmed,
		PaymentStatus:     model.PaymentPaid,
		CheckoutSessionID: "cs_1",
		PaymentIntentID:   "pi_1",
	}

	err := f.svc.CreateFromPayment(context.Background(), booking)
	expectStatus(t, err, 422)

	if len(f.repo.bookings) != 0 {
		t.Error("over-capacity booking must not be persisted")
	}
	if len(f.notifier.events) != 0 {
		t.Errorf("no notifications for a rejected booking, got %v", f.notifier.events)
	}
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)

	otherGuest := "64f0c1a2b3d4e5f601234588"
	f.repo.add(&model.Booking{PropertyID: testPropertyID, GuestID: testGuestID, HostID: testHostID, Status: model.BookingPending})
	f.repo.add(&model.Booking{PropertyID: testPropertyID, GuestID: otherGuest, HostID: testHostID, Status: model.BookingPending})

	_, total, err := f.svc.List(context.Background(), guestActor, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("guest should only see own bookings, got %d", total)
	}

	_, total, err = f.svc.List(context.Background(), hostActor, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("host should see both property bookings, got %d", total)
	}

	_, total, err = f.svc.List(context.Background(), adminActor, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("admin should see everything, got %d", total)
	}
}

func TestCreateRepoFailureSurfacesInternal(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = errors.New("write concern failure")

	_, err := f.svc.Create(context.Background(), guestActor, testRequest(futureDate(1), futureDate(3)))
	expectStatus(t, err, 500)

	if len(f.locks.releases) != 1 {
		t.Error("lock must be released even when the insert fails")
	}
}
