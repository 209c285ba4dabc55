package main

import (
	"errors"

	paymenthandler "paddock/internal/payments/handler"
	paymentrepository "paddock/internal/payments/repository"
	paymentservice "paddock/internal/payments/service"
	subshandler "paddock/internal/subscriptions/handler"
	subsrepository "paddock/internal/subscriptions/repository"
	subsservice "paddock/internal/subscriptions/service"
	subsvalidator "paddock/internal/subscriptions/validator"
	"paddock/internal/users/handler"
	"paddock/internal/users/repository"
	"paddock/internal/users/service"
	"paddock/internal/users/validator"
	"paddock/pkg/app"
	"paddock/pkg/auth"
	"paddock/pkg/config"
	"paddock/pkg/events"
)

// The accounts binary serves users, subscription plans and booking payments.
// All three share the Users collection and the Omise client, so they run in
// one process.
const ServiceName = "accounts"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()
	cfg.SetOmise()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Accounts service")

	producer := newPaymentProducer(cfg)
	defer producer.Close()

	userService := initUserServices(cfg)
	planService, purchaseService := initSubscriptionServices(cfg)
	paymentService := initPaymentServices(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewUserHandler(userService, cfg.Log),
		subshandler.NewPlanHandler(planService, purchaseService, cfg.Log),
		paymenthandler.NewPaymentHandler(paymentService, cfg.Log),
	)
	serverApp.Run()
}

func initUserServices(cfg *config.Config) service.UserService {
	userValidator := validator.NewUserValidator(cfg.Log)
	userRepo := repository.NewMongoUserRepository(cfg)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	return service.NewUserService(userRepo, userValidator, tokens, cfg)
}

func initSubscriptionServices(cfg *config.Config) (subsservice.PlanService, subsservice.PurchaseService) {
	planValidator := subsvalidator.NewPlanValidator(cfg.Log)
	planRepo := subsrepository.NewMongoPlanRepository(cfg)
	billingRepo := subsrepository.NewMongoBillingRepository(cfg)
	charger := subsservice.NewOmiseCharger(cfg.Client.Omise)

	planService := subsservice.NewPlanService(planRepo, planValidator, cfg)
	purchaseService := subsservice.NewPurchaseService(planRepo, billingRepo, charger, cfg)
	return planService, purchaseService
}

func initPaymentServices(cfg *config.Config, producer *events.Producer) paymentservice.PaymentService {
	bookingRepo := paymentrepository.NewBookingLookupRepository(cfg)
	billingRepo := paymentrepository.NewMongoBillingRepository(cfg)
	processor := paymentservice.NewOmiseProcessor(cfg.Client.Omise)
	return paymentservice.NewPaymentService(bookingRepo, billingRepo, processor, producer, cfg)
}

// newPaymentProducer returns nil when no brokers are configured. The payment
// service treats a nil producer as a no-op; without brokers payment outcomes
// do not reach the bookings service.
func newPaymentProducer(cfg *config.Config) *events.Producer {
	producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaPaymentTopic, cfg.Log)
	if err != nil {
		if errors.Is(err, events.ErrNoBrokers) {
			cfg.Log.Warn("No Kafka brokers configured, payment events disabled")
			return nil
		}
		cfg.Log.Fatal("Failed to create payment event producer", "error", err)
	}
	return producer
}
