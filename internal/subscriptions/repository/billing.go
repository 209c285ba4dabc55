package repository

import (
	"context"
	"errors"
	"fmt"
	subserrors "paddock/internal/subscriptions/errors"
	"paddock/pkg/config"
	mongotx "paddock/pkg/db/mongo"
	"paddock/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	userCollectionName = "Users"
)

// BillingRepository writes the purchase outcome onto the user document:
// one payment history entry plus the new subscription state.
type BillingRepository interface {
	FindUser(ctx context.Context, id string) (*model.User, error)
	AppendPayment(ctx context.Context, userID string, record model.PaymentRecord) error
	SetSubscription(ctx context.Context, userID string, sub model.UserSubscription) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBillingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBillingRepository(cfg *config.Config) BillingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBillingRepository{
		cfg:        cfg,
		collection: db.Collection(userCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBillingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBillingRepository) FindUser(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", subserrors.ErrInvalidID, id)
	}

	var user model.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, subserrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

func (r *mongoBillingRepository) AppendPayment(ctx context.Context, userID string, record model.PaymentRecord) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: %s", subserrors.ErrInvalidID, userID)
	}

	update := bson.M{"$push": bson.M{"payment_history": record}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to append payment record: %w", err)
	}
	if result.MatchedCount == 0 {
		return subserrors.ErrUserNotFound
	}
	return nil
}

func (r *mongoBillingRepository) SetSubscription(ctx context.Context, userID string, sub model.UserSubscription) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: %s", subserrors.ErrInvalidID, userID)
	}

	update := bson.M{"$set": bson.M{"subscription": sub}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	if result.MatchedCount == 0 {
		return subserrors.ErrUserNotFound
	}
	return nil
}

func (r *mongoBillingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
