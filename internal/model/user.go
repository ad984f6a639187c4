package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered account. The email is stored normalized
// (trimmed, lowercased) and is unique across the collection.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}
