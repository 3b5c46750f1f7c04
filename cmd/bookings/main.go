package main

import (
	"smartstay/internal/bookings/handler"
	"smartstay/internal/bookings/repository"
	"smartstay/internal/bookings/service"
	"smartstay/internal/bookings/validator"
	notificationservice "smartstay/internal/notifications/service"
	paymentservice "smartstay/internal/payments/service"
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

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")
	producer := initProducer(cfg)
	defer producer.Close()

	bookingService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
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

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)

	properties := propertyservice.NewPropertyService(
		propertyrepository.NewMongoPropertyRepository(cfg),
		propertyvalidator.NewPropertyValidator(cfg.Log),
		cfg,
	)

	notifier := notificationservice.NewNotifier(producer, ServiceName, cfg)

	gateway := client.NewPaymentGateway(cfg.PaymentGatewayBaseURL, cfg.PaymentGatewayAPIKey, cfg.PaymentWebhookSecret)
	refunder := paymentservice.NewGatewayRefunder(gateway)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		bookingValidator,
		properties,
		notifier,
		refunder,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
