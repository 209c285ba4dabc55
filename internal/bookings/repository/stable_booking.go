package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "paddock/internal/bookings/errors"
	"paddock/pkg/config"
	mongotx "paddock/pkg/db/mongo"
	"paddock/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const StableBookingCollection = "StableBookings"

type StableBookingRepository interface {
	Create(ctx context.Context, booking *model.StableBooking) error
	FindByID(ctx context.Context, id string) (*model.StableBooking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.StableBooking, error)
	FindByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.StableBooking, error)
	CountByClient(ctx context.Context, clientID string) (int64, error)
	FindOverlapping(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error)
	Update(ctx context.Context, id string, booking *model.StableBooking) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoStableBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewStableBookingRepository(cfg *config.Config) StableBookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStableBookingRepository{
		cfg:        cfg,
		collection: db.Collection(StableBookingCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoStableBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoStableBookingRepository) Create(ctx context.Context, booking *model.StableBooking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create stable booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoStableBookingRepository) FindByID(ctx context.Context, id string) (*model.StableBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.StableBooking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stable booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoStableBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.StableBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stable bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.StableBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode stable bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoStableBookingRepository) FindByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.StableBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"client_id": clientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings by client: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.StableBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode stable bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoStableBookingRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"client_id": clientID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by client: %w", err)
	}
	return count, nil
}

// FindOverlapping returns non-cancelled bookings intersecting [from, to].
// Bookings without an end date occupy their start day only.
func (r *mongoStableBookingRepository) FindOverlapping(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"stable_id": stableID,
		"status":    bson.M{"$ne": model.BookingStatusCancelled},
		"$or": []bson.M{
			{
				"start_date": bson.M{"$lte": to},
				"end_date":   bson.M{"$gte": from},
			},
			{
				"end_date":   nil,
				"start_date": bson.M{"$gte": from, "$lte": to},
			},
		},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.StableBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoStableBookingRepository) Update(ctx context.Context, id string, booking *model.StableBooking) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"type":        booking.Type,
			"start_date":  booking.StartDate,
			"end_date":    booking.EndDate,
			"horse_count": booking.HorseCount,
			"base_price":  booking.BasePrice,
			"services":    booking.Services,
			"total_price": booking.TotalPrice,
			"status":      booking.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update stable booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, bookingserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoStableBookingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoStableBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete stable booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoStableBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count stable bookings: %w", err)
	}

	return count, nil
}

func (r *mongoStableBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
