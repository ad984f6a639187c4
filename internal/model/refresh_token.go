package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RefreshToken is the stored half of an opaque refresh credential. Only the
// SHA-256 digest of the raw token is persisted; the raw value is returned to
// the client once and never stored. A token is valid while revoked_at is unset
// and expires_at is in the future, and is revoked exactly once on redemption.
type RefreshToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	TokenHash string        `bson:"token_hash"`
	ExpiresAt time.Time     `bson:"expires_at"`
	RevokedAt *time.Time    `bson:"revoked_at"`
	CreatedAt time.Time     `bson:"created_at"`
}
