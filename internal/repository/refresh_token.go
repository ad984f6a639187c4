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

// RefreshTokenRepository defines the interface for refresh token operations.
type RefreshTokenRepository interface {
	// CreateToken stores a new refresh token row.
	CreateToken(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error)

	// RevokeValidToken atomically marks the token matching tokenHash revoked,
	// provided it is still unrevoked and expires strictly after now, and
	// returns the row as it was before revocation. ErrNotFound covers
	// unknown, expired, and already-revoked tokens alike, which guarantees
	// at most one caller wins a concurrent redemption race.
	RevokeValidToken(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error)

	// DeleteStaleTokens removes every token that is expired at now or revoked.
	DeleteStaleTokens(ctx context.Context, now time.Time) (int64, error)
}

const refreshTokenCollection = "refresh_tokens"

type refreshTokenMongoRepository struct {
	db *mongo.Database
}

// NewRefreshTokenMongoRepository creates the MongoDB-backed refresh token
// repository and ensures its indexes exist.
func NewRefreshTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) RefreshTokenRepository {
	collection := db.Collection(refreshTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create refresh token indexes")
	}

	return &refreshTokenMongoRepository{db: db}
}

func (r *refreshTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.RefreshToken,
) (*model.RefreshToken, error) {
	token.CreatedAt = time.Now()

	result, err := r.db.Collection(refreshTokenCollection).InsertOne(ctx, token)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	}

	return token, nil
}

func (r *refreshTokenMongoRepository) RevokeValidToken(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*model.RefreshToken, error) {
	filter := bson.M{
		"token_hash": tokenHash,
		"revoked_at": nil,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{"revoked_at": now},
	}

	var token model.RefreshToken
	err := r.db.Collection(refreshTokenCollection).
		FindOneAndUpdate(ctx, filter, update).
		Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &token, nil
}

func (r *refreshTokenMongoRepository) DeleteStaleTokens(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$lte": now}},
			bson.M{"revoked_at": bson.M{"$ne": nil}},
		},
	}

	result, err := r.db.Collection(refreshTokenCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
