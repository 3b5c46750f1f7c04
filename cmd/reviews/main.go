package main

import (
	bookingrepository "smartstay/internal/bookings/repository"
	"smartstay/internal/reviews/handler"
	"smartstay/internal/reviews/repository"
	"smartstay/internal/reviews/service"
	"smartstay/internal/reviews/validator"
	"smartstay/pkg/app"
	"smartstay/pkg/config"
)

const ServiceName = "reviews"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reviews service")
	reviewService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReviewHandler(reviewService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ReviewService {
	reviewValidator := validator.NewReviewValidator(cfg.Log)
	reviewRepo := repository.NewMongoReviewRepository(cfg)
	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)

	reviewService := service.NewReviewService(
		reviewRepo,
		bookingRepo,
		reviewValidator,
		cfg,
	)

	cfg.Log.Info("Review service initialized", "database", cfg.MongoDatabaseName)
	return reviewService
}
