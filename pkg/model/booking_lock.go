package model

import "time"

// BookingLock is an advisory lock document serializing booking creation per
// property. The unique _id makes concurrent acquisition fail with a duplicate
// key error; expires_at carries a TTL index so abandoned locks disappear.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
