package client

import (
	"context"
	"paddock/pkg/logger"
	"time"

	"github.com/omise/omise-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client holds the external collaborators a service may need. Each service
// sets only the ones it uses.
type Client struct {
	Mongo *mongo.Client
	Omise *omise.Client
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB",
			"error", err,
		)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetOmise(log *logger.Logger, publicKey, secretKey string) {
	if publicKey == "" || secretKey == "" {
		log.Fatal("Omise keys are required for payment processing")
	}

	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		log.Fatal("Failed to initialize Omise client", "error", err)
	}

	log.Info("Payment processor client initialized")
	c.Omise = client
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect MongoDB client", "error", err)
			return
		}
		log.Info("MongoDB client disconnected")
	}
}
