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

// StockRepository defines the interface for portfolio position operations.
// All lookups are scoped to the owning user.
type StockRepository interface {
	ListStocks(ctx context.Context, userID bson.ObjectID) ([]*model.Stock, error)
	GetStock(ctx context.Context, id string, userID bson.ObjectID) (*model.Stock, error)
	GetStockBySymbol(ctx context.Context, userID bson.ObjectID, symbol string) (*model.Stock, error)
	CreateStock(ctx context.Context, stock *model.Stock) (*model.Stock, error)
	UpdateStock(ctx context.Context, id string, userID bson.ObjectID, fields StockFields) (*model.Stock, error)
	DeleteStock(ctx context.Context, id string, userID bson.ObjectID) error
}

// StockFields is the full replaceable field set of a position.
type StockFields struct {
	Symbol   string
	Shares   float64
	BuyPrice float64
	BuyDate  time.Time
	Notes    *string
}

const stockCollection = "stocks"

type stockMongoRepository struct {
	db *mongo.Database
}

func NewStockMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) StockRepository {
	collection := db.Collection(stockCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "symbol", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create stock indexes")
	}

	return &stockMongoRepository{db: db}
}

func (r *stockMongoRepository) ListStocks(ctx context.Context, userID bson.ObjectID) ([]*model.Stock, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(stockCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stocks []*model.Stock
	if err := cursor.All(ctx, &stocks); err != nil {
		return nil, err
	}

	return stocks, nil
}

func (r *stockMongoRepository) GetStock(ctx context.Context, id string, userID bson.ObjectID) (*model.Stock, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var stock model.Stock
	err = r.db.Collection(stockCollection).
		FindOne(ctx, bson.M{"_id": objectID, "user_id": userID}).
		Decode(&stock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &stock, nil
}

func (r *stockMongoRepository) GetStockBySymbol(
	ctx context.Context,
	userID bson.ObjectID,
	symbol string,
) (*model.Stock, error) {
	var stock model.Stock
	err := r.db.Collection(stockCollection).
		FindOne(ctx, bson.M{"user_id": userID, "symbol": symbol}).
		Decode(&stock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &stock, nil
}

func (r *stockMongoRepository) CreateStock(ctx context.Context, stock *model.Stock) (*model.Stock, error) {
	now := time.Now()
	stock.CreatedAt = now
	stock.UpdatedAt = now

	result, err := r.db.Collection(stockCollection).InsertOne(ctx, stock)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		stock.ID = objectID
	}

	return stock, nil
}

func (r *stockMongoRepository) UpdateStock(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	fields StockFields,
) (*model.Stock, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"symbol":     fields.Symbol,
			"shares":     fields.Shares,
			"buy_price":  fields.BuyPrice,
			"buy_date":   fields.BuyDate,
			"notes":      fields.Notes,
			"updated_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var stock model.Stock
	err = r.db.Collection(stockCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": objectID, "user_id": userID}, update, opts).
		Decode(&stock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &stock, nil
}

func (r *stockMongoRepository) DeleteStock(ctx context.Context, id string, userID bson.ObjectID) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.db.Collection(stockCollection).
		DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
