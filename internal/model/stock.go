package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Stock is a manually entered portfolio position. Symbols are stored
// trimmed and uppercased; buy_date carries a date only (midnight UTC).
type Stock struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Symbol    string        `bson:"symbol"`
	Shares    float64       `bson:"shares"`
	BuyPrice  float64       `bson:"buy_price"`
	BuyDate   time.Time     `bson:"buy_date"`
	Notes     *string       `bson:"notes"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
