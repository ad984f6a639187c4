package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// WatchlistItem tracks a symbol the user follows without holding a position.
type WatchlistItem struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Symbol    string        `bson:"symbol"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
