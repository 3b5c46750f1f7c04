package main

import (
	"smartstay/internal/notifications/handler"
	"smartstay/internal/notifications/repository"
	"smartstay/internal/notifications/service"
	"smartstay/pkg/app"
	"smartstay/pkg/config"
	"smartstay/pkg/kafka"
	kafka_config "smartstay/pkg/kafka/config"
	kafka_middleware "smartstay/pkg/kafka/middleware"
)

const ServiceName = "notifier"

// The notifier runs the notification ingest worker and serves the
// notification read API from the same process.
func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Notifier service")
	notificationService := initServices(cfg)
	consumer := initConsumer(cfg, notificationService)
	defer consumer.Close()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewNotificationHandler(notificationService, cfg.Log))
	serverApp.AddWorker(consumer.Start)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.NotificationService {
	notificationRepo := repository.NewMongoNotificationRepository(cfg)
	notificationService := service.NewNotificationService(notificationRepo, cfg)

	cfg.Log.Info("Notification service initialized", "database", cfg.MongoDatabaseName)
	return notificationService
}

func initConsumer(cfg *config.Config, notificationService service.NotificationService) *kafka.Consumer {
	kafkaCfg := kafka_config.Load()
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.NotificationsTopic,
		cfg.NotifierGroupID,
		cfg.NotificationsDLQTopic,
		notificationService.Ingest,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create notifications consumer", "error", err)
	}
	consumer.Use(kafka_middleware.ConsumerLogging(cfg.Log))
	return consumer
}
