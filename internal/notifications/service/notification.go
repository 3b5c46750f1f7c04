package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	notificationserrors "smartstay/internal/notifications/errors"
	"smartstay/internal/notifications/repository"
	"smartstay/pkg/config"
	apperrors "smartstay/pkg/errors"
	"smartstay/pkg/kafka"
	"smartstay/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type NotificationService interface {
	Ingest(ctx context.Context, msg kafka.Message) error
	ListForActor(ctx context.Context, actor model.Actor, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error)
	MarkRead(ctx context.Context, actor model.Actor, id string) error
	MarkAllRead(ctx context.Context, actor model.Actor) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	cfg  *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, cfg *config.Config) NotificationService {
	return &notificationService{
		repo: repo,
		cfg:  cfg,
	}
}

// Ingest persists one notification consumed from the broker. Decode failures
// are permanent: returning them unretried routes the message to the DLQ.
func (s *notificationService) Ingest(ctx context.Context, msg kafka.Message) error {
	var notification model.Notification
	if err := msg.DecodeValue(&notification); err != nil {
		return fmt.Errorf("undecodable notification payload: %w", err)
	}

	if notification.Recipient == "" || notification.Type == "" {
		return fmt.Errorf("notification missing recipient or type (event_id=%s)", msg.GetEventID())
	}

	// The broker event id doubles as the storage id, making redelivery
	// after a commit failure harmless.
	if eventID := msg.GetEventID(); eventID != "" {
		notification.ID = eventID
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			s.cfg.Log.Info("Notification already stored, skipping redelivery", "id", notification.ID)
			return nil
		}
		return err
	}

	s.cfg.Log.Debug("Notification stored",
		"id", notification.ID,
		"type", notification.Type,
		"recipient", notification.Recipient,
	)
	return nil
}

func (s *notificationService) ListForActor(ctx context.Context, actor model.Actor, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error) {
	var count int64
	var notifications []*model.Notification
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByRecipient(ctx, actor.Email, unreadOnly)
		if err != nil {
			s.cfg.Log.Error("Failed to count notifications", "recipient", actor.Email, "error", err)
			errCount = apperrors.Internal("Failed to count notifications", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		notifications, err = s.repo.FindByRecipient(ctx, actor.Email, unreadOnly, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list notifications", "recipient", actor.Email, "error", err)
			errFind = apperrors.Internal("Failed to retrieve notifications", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return notifications, count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor model.Actor, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Notification ID cannot be empty")
	}

	if err := s.repo.MarkRead(ctx, id, actor.Email); err != nil {
		if errors.Is(err, notificationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Notification", id)
		}
		if errors.Is(err, notificationserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid notification ID format")
		}
		return apperrors.Internal("Failed to mark notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor model.Actor) (int64, error) {
	modified, err := s.repo.MarkAllRead(ctx, actor.Email)
	if err != nil {
		return 0, apperrors.Internal("Failed to mark notifications read", err)
	}
	return modified, nil
}
