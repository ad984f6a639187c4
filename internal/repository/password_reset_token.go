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

// PasswordResetTokenRepository defines the interface for reset code operations.
type PasswordResetTokenRepository interface {
	// CreateToken stores a new reset token row. Repeated forgot-password
	// calls mint independent rows; duplicates per user are allowed.
	CreateToken(ctx context.Context, token *model.PasswordResetToken) (*model.PasswordResetToken, error)

	// ConsumeValidToken atomically marks the newest unused, unexpired token
	// matching userID and codeHash as used at now, and returns it.
	// ErrNotFound covers unknown, expired, and already-used codes alike.
	ConsumeValidToken(ctx context.Context, userID bson.ObjectID, codeHash string, now time.Time) (*model.PasswordResetToken, error)

	// DeleteExpiredTokens removes every token expired at now.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

const passwordResetTokenCollection = "password_reset_tokens"

type passwordResetTokenMongoRepository struct {
	db *mongo.Database
}

// NewPasswordResetTokenMongoRepository creates the MongoDB-backed reset token
// repository and ensures its indexes exist.
func NewPasswordResetTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PasswordResetTokenRepository {
	collection := db.Collection(passwordResetTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "code_hash", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create password reset token indexes")
	}

	return &passwordResetTokenMongoRepository{db: db}
}

func (r *passwordResetTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	token.CreatedAt = time.Now()
	token.UsedAt = nil

	result, err := r.db.Collection(passwordResetTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	}

	return token, nil
}

func (r *passwordResetTokenMongoRepository) ConsumeValidToken(
	ctx context.Context,
	userID bson.ObjectID,
	codeHash string,
	now time.Time,
) (*model.PasswordResetToken, error) {
	filter := bson.M{
		"user_id":    userID,
		"code_hash":  codeHash,
		"used_at":    nil,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{"used_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	var token model.PasswordResetToken
	err := r.db.Collection(passwordResetTokenCollection).
		FindOneAndUpdate(ctx, filter, update, opts).
		Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &token, nil
}

func (r *passwordResetTokenMongoRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"expires_at": bson.M{"$lte": now},
	}

	result, err := r.db.Collection(passwordResetTokenCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
