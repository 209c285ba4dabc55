package main

import (
	"context"
	"errors"

	"paddock/internal/bookings/handler"
	"paddock/internal/bookings/repository"
	"paddock/internal/bookings/service"
	"paddock/internal/bookings/validator"
	"paddock/pkg/app"
	"paddock/pkg/config"
	"paddock/pkg/events"
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

	producer := newBookingProducer(cfg)
	defer producer.Close()

	stableBookingService, trainerBookingService, paymentHandler := initServices(cfg, producer)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	startPaymentConsumer(consumerCtx, cfg, paymentHandler)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewStableBookingHandler(stableBookingService, cfg.Log),
		handler.NewTrainerBookingHandler(trainerBookingService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, producer *events.Producer) (service.StableBookingService, service.TrainerBookingService, *service.PaymentEventHandler) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	stableRepo := repository.NewStableBookingRepository(cfg)
	trainerRepo := repository.NewTrainerBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)
	listingRepo := repository.NewListingLookupRepository(cfg)
	userRepo := repository.NewUserLookupRepository(cfg)

	stableBookingService := service.NewStableBookingService(
		stableRepo,
		lockRepo,
		listingRepo,
		userRepo,
		bookingValidator,
		producer,
		cfg,
	)
	trainerBookingService := service.NewTrainerBookingService(
		trainerRepo,
		lockRepo,
		listingRepo,
		userRepo,
		bookingValidator,
		producer,
		cfg,
	)
	paymentHandler := service.NewPaymentEventHandler(stableRepo, trainerRepo, producer, cfg)

	cfg.Log.Info("Booking services initialized", "database", cfg.MongoDatabaseName)
	return stableBookingService, trainerBookingService, paymentHandler
}

// newBookingProducer returns nil when no brokers are configured. The booking
// services treat a nil producer as a no-op, so the service stays usable in
// environments without Kafka.
func newBookingProducer(cfg *config.Config) *events.Producer {
	producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaBookingTopic, cfg.Log)
	if err != nil {
		if errors.Is(err, events.ErrNoBrokers) {
			cfg.Log.Warn("No Kafka brokers configured, booking events disabled")
			return nil
		}
		cfg.Log.Fatal("Failed to create booking event producer", "error", err)
	}
	return producer
}

func startPaymentConsumer(ctx context.Context, cfg *config.Config, handler *service.PaymentEventHandler) {
	consumer, err := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaPaymentTopic, cfg.KafkaGroupID, cfg.Log)
	if err != nil {
		if errors.Is(err, events.ErrNoBrokers) {
			cfg.Log.Warn("No Kafka brokers configured, payment events will not settle bookings")
			return
		}
		cfg.Log.Fatal("Failed to create payment event consumer", "error", err)
	}

	cfg.Log.Info("Consuming payment events",
		"topic", cfg.KafkaPaymentTopic,
		"group_id", cfg.KafkaGroupID,
	)
	consumer.Start(ctx, handler.Handle)
}
