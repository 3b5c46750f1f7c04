package repository

import (
	"context"
	"time"

	"smartstay/pkg/config"
	"smartstay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingLockRepository provides advisory per-property locks. The lock _id is
// the property id; the unique index turns concurrent acquisitions into
// duplicate key errors, and the TTL index reaps locks left by crashed
// processes.
type BookingLockRepository interface {
	Acquire(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	Release(ctx context.Context, lockID string) error
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: db.Collection("Booking_locks"),
	}
}

// Acquire returns a duplicate key error if the lock is already held.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
