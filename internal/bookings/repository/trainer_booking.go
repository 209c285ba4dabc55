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

const TrainerBookingCollection = "TrainerBookings"

type TrainerBookingRepository interface {
	Create(ctx context.Context, booking *model.TrainerBooking) error
	FindByID(ctx context.Context, id string) (*model.TrainerBooking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.TrainerBooking, error)
	FindByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.TrainerBooking, error)
	CountByClient(ctx context.Context, clientID string) (int64, error)
	FindOverlapping(ctx context.Context, trainerID string, from, to time.Time) ([]*model.TrainerBooking, error)
	Update(ctx context.Context, id string, booking *model.TrainerBooking) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoTrainerBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewTrainerBookingRepository(cfg *config.Config) TrainerBookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTrainerBookingRepository{
		cfg:        cfg,
		collection: db.Collection(TrainerBookingCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoTrainerBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTrainerBookingRepository) Create(ctx context.Context, booking *model.TrainerBooking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create trainer booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTrainerBookingRepository) FindByID(ctx context.Context, id string) (*model.TrainerBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.TrainerBooking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find trainer booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoTrainerBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.TrainerBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find trainer bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.TrainerBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode trainer bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoTrainerBookingRepository) FindByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.TrainerBooking, error) {
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

	var bookings []*model.TrainerBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode trainer bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoTrainerBookingRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"client_id": clientID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by client: %w", err)
	}
	return count, nil
}

func (r *mongoTrainerBookingRepository) FindOverlapping(ctx context.Context, trainerID string, from, to time.Time) ([]*model.TrainerBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"trainer_id": trainerID,
		"status":     bson.M{"$ne": model.BookingStatusCancelled},
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

	var bookings []*model.TrainerBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoTrainerBookingRepository) Update(ctx context.Context, id string, booking *model.TrainerBooking) (*mongo.UpdateResult, error) {
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
			"disciplines": booking.Disciplines,
			"trainings":   booking.Trainings,
			"coaching":    booking.Coaching,
			"total_price": booking.TotalPrice,
			"status":      booking.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update trainer booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, bookingserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoTrainerBookingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
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

func (r *mongoTrainerBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete trainer booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoTrainerBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count trainer bookings: %w", err)
	}

	return count, nil
}

func (r *mongoTrainerBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
