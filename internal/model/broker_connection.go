package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BrokerConnection records how a user's positions arrived from a broker.
// CSV imports create a row with status "csv"; OAuth-linked brokers would
// additionally carry external_id and token material.
type BrokerConnection struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	UserID       bson.ObjectID `bson:"user_id"`
	Provider     string        `bson:"provider"`
	ExternalID   *string       `bson:"external_id"`
	AccessToken  *string       `bson:"access_token"`
	RefreshToken *string       `bson:"refresh_token"`
	ExpiresAt    *time.Time    `bson:"expires_at"`
	Status       string        `bson:"status"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}
