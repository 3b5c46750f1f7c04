package main

import (
	bookingrepository "smartstay/internal/bookings/repository"
	bookingservice "smartstay/internal/bookings/service"
	bookingvalidator "smartstay/internal/bookings/validator"
	notificationservice "smartstay/internal/notifications/service"
	"smartstay/internal/payments/handler"
	"smartstay/internal/payments/service"
	propertyrepository "smartstay/internal/properties/repository"
	propertyservice "smartstay/internal/properties/service"
	propertyvalidator "smartstay/internal/properties/validator"
	"smartstay/pkg/app"
	"smartstay/pkg/client"
	"smartstay/pkg/config"
	"smartstay/pkg/kafka"
	kafka_config "smartstay/pkg/kafka/config"
	kafka_middleware "smartstay/pkg/kafka/middleware"
)

const ServiceName = "payments"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Payments service")
	producer := initProducer(cfg)
	defer producer.Close()

	paymentService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg)
	// The gateway authenticates webhooks with a payload signature, not actor
	// headers.
	serverApp.ExemptIdentity(handler.WebhookPath)
	serverApp.SetApp(handler.NewPaymentHandler(paymentService, cfg.Log))
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationsTopic, cfg.NotificationsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create notifications producer", "error", err)
	}
	producer.Use(kafka_middleware.ProducerLogging(cfg.Log))
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.PaymentService {
	gateway := client.NewPaymentGateway(cfg.PaymentGatewayBaseURL, cfg.PaymentGatewayAPIKey, cfg.PaymentWebhookSecret)

	properties := propertyservice.NewPropertyService(
		propertyrepository.NewMongoPropertyRepository(cfg),
		propertyvalidator.NewPropertyValidator(cfg.Log),
		cfg,
	)

	notifier := notificationservice.NewNotifier(producer, ServiceName, cfg)

	bookings := bookingservice.NewBookingService(
		bookingrepository.NewMongoBookingRepository(cfg),
		bookingrepository.NewBookingLockRepository(cfg),
		bookingvalidator.NewBookingValidator(cfg.Log),
		properties,
		notifier,
		service.NewGatewayRefunder(gateway),
		cfg,
	)

	paymentService := service.NewPaymentService(gateway, bookings, cfg)

	cfg.Log.Info("Payment service initialized", "database", cfg.MongoDatabaseName)
	return paymentService
}
