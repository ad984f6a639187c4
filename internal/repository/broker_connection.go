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

// BrokerConnectionRepository defines the interface for broker connection rows.
type BrokerConnectionRepository interface {
	ListConnections(ctx context.Context, userID bson.ObjectID) ([]*model.BrokerConnection, error)
	GetConnectionByProvider(ctx context.Context, userID bson.ObjectID, provider string) (*model.BrokerConnection, error)

	// UpsertCSVImport records that positions for provider arrived via CSV.
	// A connection that carries OAuth material keeps its current status.
	UpsertCSVImport(ctx context.Context, userID bson.ObjectID, provider string, now time.Time) (*model.BrokerConnection, error)
}

const brokerConnectionCollection = "broker_connections"

// BrokerStatusCSV marks a connection whose data arrived by CSV import.
const BrokerStatusCSV = "csv"

type brokerConnectionMongoRepository struct {
	db *mongo.Database
}

func NewBrokerConnectionMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) BrokerConnectionRepository {
	collection := db.Collection(brokerConnectionCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "provider", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create broker connection indexes")
	}

	return &brokerConnectionMongoRepository{db: db}
}

func (r *brokerConnectionMongoRepository) ListConnections(
	ctx context.Context,
	userID bson.ObjectID,
) ([]*model.BrokerConnection, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "created_at", Value: -1},
	})

	cursor, err := r.db.Collection(brokerConnectionCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var connections []*model.BrokerConnection
	if err := cursor.All(ctx, &connections); err != nil {
		return nil, err
	}

	return connections, nil
}

func (r *brokerConnectionMongoRepository) GetConnectionByProvider(
	ctx context.Context,
	userID bson.ObjectID,
	provider string,
) (*model.BrokerConnection, error) {
	var connection model.BrokerConnection
	err := r.db.Collection(brokerConnectionCollection).
		FindOne(ctx, bson.M{"user_id": userID, "provider": provider}).
		Decode(&connection)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &connection, nil
}

func (r *brokerConnectionMongoRepository) UpsertCSVImport(
	ctx context.Context,
	userID bson.ObjectID,
	provider string,
	now time.Time,
) (*model.BrokerConnection, error) {
	existing, err := r.GetConnectionByProvider(ctx, userID, provider)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		update := bson.M{"$set": bson.M{"updated_at": now}}
		if existing.AccessToken == nil && existing.RefreshToken == nil && existing.ExternalID == nil {
			update = bson.M{"$set": bson.M{"status": BrokerStatusCSV, "updated_at": now}}
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var connection model.BrokerConnection
		err := r.db.Collection(brokerConnectionCollection).
			FindOneAndUpdate(ctx, bson.M{"_id": existing.ID}, update, opts).
			Decode(&connection)
		if err != nil {
			return nil, err
		}
		return &connection, nil
	}

	connection := &model.BrokerConnection{
		UserID:    userID,
		Provider:  provider,
		Status:    BrokerStatusCSV,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := r.db.Collection(brokerConnectionCollection).InsertOne(ctx, connection)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.GetConnectionByProvider(ctx, userID, provider)
		}
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		connection.ID = objectID
	}

	return connection, nil
}
