package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "smartstay"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Guest-initiated cancellations are rejected once the check-in is closer
	// than this cutoff.
	DefaultGuestCancelCutoff = 24 * time.Hour

	DefaultBookingLockTTL = 10 * time.Second

	DefaultDefaultCleaningFee = 25.0
	DefaultDefaultServiceFee  = 15.0
	DefaultCurrency           = "usd"

	DefaultPaymentGatewayBaseURL = "http://localhost:4242"
	DefaultCheckoutSuccessURL    = "http://localhost:3000/checkout/success"
	DefaultCheckoutCancelURL     = "http://localhost:3000/checkout/cancel"

	DefaultNotificationsTopic    = "smartstay.notifications"
	DefaultNotificationsDLQTopic = "smartstay.notifications.dlq"
	DefaultNotifierGroupID       = "smartstay-notifier"

	DefaultPaginationLimit = 100
)
