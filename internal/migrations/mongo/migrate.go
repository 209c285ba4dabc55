package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"paddock/internal/migrations/mongo/validators"
)

var (
	StablesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{
			{Key: "location.city", Value: 1},
			{Key: "status", Value: 1},
			{Key: "rating", Value: -1},
		}},
	}

	TrainersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{
			{Key: "location.city", Value: 1},
			{Key: "status", Value: 1},
			{Key: "rating", Value: -1},
		}},
	}

	StableBookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "stable_id", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "client_id", Value: 1},
			{Key: "start_date", Value: -1},
		}},
	}

	TrainerBookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "trainer_id", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "client_id", Value: 1},
			{Key: "start_date", Value: -1},
		}},
	}

	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	SubscriptionPlansIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}

	RatingEventsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "entity_kind", Value: 1},
				{Key: "entity_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	// abandoned locks expire on their own; zero means "at expires_at"
	BookingLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Paddock Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Stables": {
			Indexes:   StablesIndexes,
			Validator: validators.StableValidator,
		},
		"Trainers": {
			Indexes:   TrainersIndexes,
			Validator: validators.TrainerValidator,
		},
		"StableBookings": {
			Indexes:   StableBookingsIndexes,
			Validator: validators.StableBookingValidator,
		},
		"TrainerBookings": {
			Indexes:   TrainerBookingsIndexes,
			Validator: validators.TrainerBookingValidator,
		},
		"Users": {
			Indexes:   UsersIndexes,
			Validator: validators.UserValidator,
		},
		"SubscriptionPlans": {
			Indexes:   SubscriptionPlansIndexes,
			Validator: validators.SubscriptionPlanValidator,
		},
		"RatingEvents": {
			Indexes:   RatingEventsIndexes,
			Validator: validators.RatingEventValidator,
		},
		"BookingLocks": {
			Indexes:   BookingLocksIndexes,
			Validator: validators.BookingLockValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
