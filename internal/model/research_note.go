package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ResearchNote holds a user's investment thesis for a symbol.
type ResearchNote struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	UserID         bson.ObjectID `bson:"user_id"`
	Symbol         string        `bson:"symbol"`
	Title          *string       `bson:"title"`
	Thesis         string        `bson:"thesis"`
	Risks          *string       `bson:"risks"`
	Catalysts      *string       `bson:"catalysts"`
	ReferenceLinks []string      `bson:"reference_links"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"`
}
