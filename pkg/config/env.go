package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvGuestCancelCutoff = "GUEST_CANCEL_CUTOFF"
	EnvBookingLockTTL    = "BOOKING_LOCK_TTL"

	EnvDefaultCleaningFee = "DEFAULT_CLEANING_FEE"
	EnvDefaultServiceFee  = "DEFAULT_SERVICE_FEE"
	EnvCurrency           = "CURRENCY"

	EnvPaymentGatewayBaseURL = "PAYMENT_GATEWAY_BASE_URL"
	EnvPaymentGatewayAPIKey  = "PAYMENT_GATEWAY_API_KEY"
	EnvPaymentWebhookSecret  = "PAYMENT_WEBHOOK_SECRET"
	EnvCheckoutSuccessURL    = "CHECKOUT_SUCCESS_URL"
	EnvCheckoutCancelURL     = "CHECKOUT_CANCEL_URL"

	EnvNotificationsTopic    = "NOTIFICATIONS_TOPIC"
	EnvNotificationsDLQTopic = "NOTIFICATIONS_DLQ_TOPIC"
	EnvNotifierGroupID       = "NOTIFIER_GROUP_ID"
)
