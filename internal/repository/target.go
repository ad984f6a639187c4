package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/stockplan/stockplan-api/internal/model"
)

// TargetRepository defines the interface for price target operations.
type TargetRepository interface {
	ListTargets(ctx context.Context, userID bson.ObjectID) ([]*model.Target, error)
	CreateTarget(ctx context.Context, target *model.Target) (*model.Target, error)
	UpdateTarget(ctx context.Context, id string, userID bson.ObjectID, fields TargetFields) (*model.Target, error)
	DeleteTarget(ctx context.Context, id string, userID bson.ObjectID) error
}

// TargetFields is the full replaceable field set of a price target.
type TargetFields struct {
	Symbol      string
	Scenario    string
	TargetPrice float64
	TargetDate  *time.Time
	Rationale   *string
}

const targetCollection = "targets"

type targetMongoRepository struct {
	db *mongo.Database
}

func NewTargetMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) TargetRepository {
	collection := db.Collection(targetCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "symbol", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create target indexes")
	}

	return &targetMongoRepository{db: db}
}

func (r *targetMongoRepository) ListTargets(ctx context.Context, userID bson.ObjectID) ([]*model.Target, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(targetCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var targets []*model.Target
	if err := cursor.All(ctx, &targets); err != nil {
		return nil, err
	}

	return targets, nil
}

func (r *targetMongoRepository) CreateTarget(ctx context.Context, target *model.Target) (*model.Target, error) {
	now := time.Now()
	target.CreatedAt = now
	target.UpdatedAt = now

	result, err := r.db.Collection(targetCollection).InsertOne(ctx, target)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		target.ID = objectID
	}

	return target, nil
}

func (r *targetMongoRepository) UpdateTarget(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	fields TargetFields,
) (*model.Target, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"symbol":       fields.Symbol,
			"scenario":     fields.Scenario,
			"target_price": fields.TargetPrice,
			"target_date":  fields.TargetDate,
			"rationale":    fields.Rationale,
			"updated_at":   time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var target model.Target
	err = r.db.Collection(targetCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": objectID, "user_id": userID}, update, opts).
		Decode(&target)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &target, nil
}

func (r *targetMongoRepository) DeleteTarget(ctx context.Context, id string, userID bson.ObjectID) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.db.Collection(targetCollection).
		DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
