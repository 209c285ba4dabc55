package main

import (
	"paddock/internal/trainers/handler"
	"paddock/internal/trainers/repository"
	"paddock/internal/trainers/service"
	"paddock/internal/trainers/validator"
	"paddock/pkg/app"
	"paddock/pkg/config"
)

const ServiceName = "trainers"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Trainers service")
	trainerService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewTrainerHandler(trainerService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.TrainerService {
	trainerValidator := validator.NewTrainerValidator(cfg.Log)
	trainerRepo := repository.NewMongoTrainerRepository(cfg)
	ratingRepo := repository.NewRatingEventRepository(cfg)
	trainerService := service.NewTrainerService(
		trainerRepo,
		ratingRepo,
		trainerValidator,
		cfg,
	)

	cfg.Log.Info("Trainer service initialized", "database", cfg.MongoDatabaseName)
	return trainerService
}
