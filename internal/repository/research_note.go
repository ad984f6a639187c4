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

// ResearchRepository defines the interface for research note operations.
type ResearchRepository interface {
	ListNotes(ctx context.Context, userID bson.ObjectID) ([]*model.ResearchNote, error)
	GetNote(ctx context.Context, id string, userID bson.ObjectID) (*model.ResearchNote, error)
	CreateNote(ctx context.Context, note *model.ResearchNote) (*model.ResearchNote, error)
	UpdateNote(ctx context.Context, id string, userID bson.ObjectID, fields ResearchNoteFields) (*model.ResearchNote, error)
	DeleteNote(ctx context.Context, id string, userID bson.ObjectID) error
}

// ResearchNoteFields is the full replaceable field set of a note.
type ResearchNoteFields struct {
	Symbol         string
	Title          *string
	Thesis         string
	Risks          *string
	Catalysts      *string
	ReferenceLinks []string
}

const researchCollection = "research_notes"

type researchMongoRepository struct {
	db *mongo.Database
}

func NewResearchMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ResearchRepository {
	collection := db.Collection(researchCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "symbol", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create research note indexes")
	}

	return &researchMongoRepository{db: db}
}

func (r *researchMongoRepository) ListNotes(ctx context.Context, userID bson.ObjectID) ([]*model.ResearchNote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(researchCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*model.ResearchNote
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *researchMongoRepository) GetNote(ctx context.Context, id string, userID bson.ObjectID) (*model.ResearchNote, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var note model.ResearchNote
	err = r.db.Collection(researchCollection).
		FindOne(ctx, bson.M{"_id": objectID, "user_id": userID}).
		Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &note, nil
}

func (r *researchMongoRepository) CreateNote(ctx context.Context, note *model.ResearchNote) (*model.ResearchNote, error) {
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.db.Collection(researchCollection).InsertOne(ctx, note)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		note.ID = objectID
	}

	return note, nil
}

func (r *researchMongoRepository) UpdateNote(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	fields ResearchNoteFields,
) (*model.ResearchNote, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"symbol":          fields.Symbol,
			"title":           fields.Title,
			"thesis":          fields.Thesis,
			"risks":           fields.Risks,
			"catalysts":       fields.Catalysts,
			"reference_links": fields.ReferenceLinks,
			"updated_at":      time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var note model.ResearchNote
	err = r.db.Collection(researchCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": objectID, "user_id": userID}, update, opts).
		Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &note, nil
}

func (r *researchMongoRepository) DeleteNote(ctx context.Context, id string, userID bson.ObjectID) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.db.Collection(researchCollection).
		DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
