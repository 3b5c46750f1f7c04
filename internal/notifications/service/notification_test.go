package service

import (
	"context"
	"io"
	"testing"

	"smartstay/pkg/config"
	"smartstay/pkg/kafka"
	"smartstay/pkg/logger"
	"smartstay/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard, Service: "test"}),
	}
}

type mockNotificationRepo struct {
	stored map[string]*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{stored: make(map[string]*model.Notification)}
}

func (r *mockNotificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	if _, exists := r.stored[notification.ID]; exists {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	r.stored[notification.ID] = notification
	return nil
}

func (r *mockNotificationRepo) FindByRecipient(ctx context.Context, recipient string, unreadOnly bool, limit int, offset int64) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range r.stored {
		if n.Recipient != recipient {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *mockNotificationRepo) CountByRecipient(ctx context.Context, recipient string, unreadOnly bool) (int64, error) {
	ns, _ := r.FindByRecipient(ctx, recipient, unreadOnly, 0, 0)
	return int64(len(ns)), nil
}

func (r *mockNotificationRepo) MarkRead(ctx context.Context, id string, recipient string) error {
	n, ok := r.stored[id]
	if !ok || n.Recipient != recipient {
		return nil
	}
	n.Read = true
	return nil
}

func (r *mockNotificationRepo) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	var modified int64
	for _, n := range r.stored {
		if n.Recipient == recipient && !n.Read {
			n.Read = true
			modified++
		}
	}
	return modified, nil
}

func notificationMessage(eventID string) kafka.Message {
	builder := kafka.NewMessage().
		WithKey("64f0c1a2b3d4e5f601234511").
		WithValue(&model.Notification{
			Recipient: "guest@example.com",
			Type:      model.NotificationBookingConfirmed,
			Title:     "Booking confirmed",
			Message:   "Your stay at Seaside Loft is confirmed.",
		}).
		WithEventType(model.NotificationBookingConfirmed).
		WithHeader(kafka.HeaderEventID, eventID)
	return builder.Build()
}

func TestIngestStoresNotification(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, testConfig())

	if err := svc.Ingest(context.Background(), notificationMessage("evt-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, ok := repo.stored["evt-1"]
	if !ok {
		t.Fatal("expected notification stored under the event id")
	}
	if stored.Type != model.NotificationBookingConfirmed {
		t.Errorf("unexpected type %q", stored.Type)
	}
}

func TestIngestRedeliveryIsNoop(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, testConfig())

	if err := svc.Ingest(context.Background(), notificationMessage("evt-1")); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := svc.Ingest(context.Background(), notificationMessage("evt-1")); err != nil {
		t.Fatalf("redelivery must be acknowledged: %v", err)
	}
	if len(repo.stored) != 1 {
		t.Errorf("expected exactly one stored notification, got %d", len(repo.stored))
	}
}

func TestIngestRejectsUndecodablePayload(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, testConfig())

	msg := kafka.NewMessage().WithRawValue([]byte("not json")).Build()
	if err := svc.Ingest(context.Background(), msg); err == nil {
		t.Fatal("expected error for undecodable payload")
	}
}

func TestIngestRejectsIncompleteNotification(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, testConfig())

	msg := kafka.NewMessage().WithValue(&model.Notification{Title: "no recipient"}).Build()
	if err := svc.Ingest(context.Background(), msg); err == nil {
		t.Fatal("expected error for missing recipient and type")
	}
}

func TestListForActorUnreadFilter(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, testConfig())

	if err := svc.Ingest(context.Background(), notificationMessage("evt-1")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := svc.Ingest(context.Background(), notificationMessage("evt-2")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	repo.stored["evt-1"].Read = true

	actor := model.Actor{ID: "64f0c1a2b3d4e5f601234502", Email: "guest@example.com", Role: model.RoleGuest}

	_, total, err := svc.ListForActor(context.Background(), actor, false, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 notifications, got %d", total)
	}

	unread, total, err := svc.ListForActor(context.Background(), actor, true, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(unread) != 1 {
		t.Errorf("expected 1 unread notification, got total=%d len=%d", total, len(unread))
	}
}
