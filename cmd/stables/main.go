package main

import (
	"paddock/internal/stables/handler"
	"paddock/internal/stables/repository"
	"paddock/internal/stables/service"
	"paddock/internal/stables/validator"
	"paddock/pkg/app"
	"paddock/pkg/config"
)

const ServiceName = "stables"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Stables service")
	stableService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewStableHandler(stableService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.StableService {
	stableValidator := validator.NewStableValidator(cfg.Log)
	stableRepo := repository.NewMongoStableRepository(cfg)
	bookingRepo := repository.NewBookingLookupRepository(cfg)
	ratingRepo := repository.NewRatingEventRepository(cfg)
	stableService := service.NewStableService(
		stableRepo,
		bookingRepo,
		ratingRepo,
		stableValidator,
		cfg,
	)

	cfg.Log.Info("Stable service initialized", "database", cfg.MongoDatabaseName)
	return stableService
}
