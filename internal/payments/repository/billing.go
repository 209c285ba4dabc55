package repository

import (
	"context"
	"fmt"
	paymentserrors "paddock/internal/payments/errors"
	"paddock/pkg/config"
	"paddock/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const userCollection = "Users"

// BillingRepository appends settled charges to the paying user's
// embedded payment history.
type BillingRepository interface {
	AppendPayment(ctx context.Context, userID string, record model.PaymentRecord) error
}

type mongoBillingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBillingRepository(cfg *config.Config) BillingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBillingRepository{
		cfg:        cfg,
		collection: db.Collection(userCollection),
	}
}

func (r *mongoBillingRepository) AppendPayment(ctx context.Context, userID string, record model.PaymentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, userID)
	}

	update := bson.M{"$push": bson.M{"payment_history": record}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to append payment record: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymentserrors.ErrUserNotFound
	}
	return nil
}
