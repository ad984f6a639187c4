package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Target is a user-defined price target for a symbol under a named scenario
// (for example "base", "bull", "bear").
type Target struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      bson.ObjectID `bson:"user_id"`
	Symbol      string        `bson:"symbol"`
	Scenario    string        `bson:"scenario"`
	TargetPrice float64       `bson:"target_price"`
	TargetDate  *time.Time    `bson:"target_date"`
	Rationale   *string       `bson:"rationale"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
