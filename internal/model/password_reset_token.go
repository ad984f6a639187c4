package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordResetToken stores the digest of a short-lived numeric reset code.
// A code is valid while used_at is unset and expires_at is in the future.
// Several outstanding codes per user are allowed; redemption picks the most
// recently created valid one.
type PasswordResetToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	CodeHash  string        `bson:"code_hash"`
	ExpiresAt time.Time     `bson:"expires_at"`
	UsedAt    *time.Time    `bson:"used_at"`
	CreatedAt time.Time     `bson:"created_at"`
}
