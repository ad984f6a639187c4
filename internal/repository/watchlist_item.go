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

// WatchlistRepository defines the interface for watchlist operations.
type WatchlistRepository interface {
	ListItems(ctx context.Context, userID bson.ObjectID) ([]*model.WatchlistItem, error)
	GetItemBySymbol(ctx context.Context, userID bson.ObjectID, symbol string) (*model.WatchlistItem, error)
	CreateItem(ctx context.Context, item *model.WatchlistItem) (*model.WatchlistItem, error)
	DeleteItem(ctx context.Context, id string, userID bson.ObjectID) error
}

const watchlistCollection = "watchlist_items"

type watchlistMongoRepository struct {
	db *mongo.Database
}

func NewWatchlistMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) WatchlistRepository {
	collection := db.Collection(watchlistCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "symbol", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create watchlist indexes")
	}

	return &watchlistMongoRepository{db: db}
}

func (r *watchlistMongoRepository) ListItems(ctx context.Context, userID bson.ObjectID) ([]*model.WatchlistItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(watchlistCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*model.WatchlistItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *watchlistMongoRepository) GetItemBySymbol(
	ctx context.Context,
	userID bson.ObjectID,
	symbol string,
) (*model.WatchlistItem, error) {
	var item model.WatchlistItem
	err := r.db.Collection(watchlistCollection).
		FindOne(ctx, bson.M{"user_id": userID, "symbol": symbol}).
		Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &item, nil
}

func (r *watchlistMongoRepository) CreateItem(
	ctx context.Context,
	item *model.WatchlistItem,
) (*model.WatchlistItem, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := r.db.Collection(watchlistCollection).InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		item.ID = objectID
	}

	return item, nil
}

func (r *watchlistMongoRepository) DeleteItem(ctx context.Context, id string, userID bson.ObjectID) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.db.Collection(watchlistCollection).
		DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
