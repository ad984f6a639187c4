package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/repository"
)

// ResearchUsecase defines the business logic for research notes.
type ResearchUsecase interface {
	List(ctx context.Context, userID bson.ObjectID) ([]*model.ResearchNote, error)
	Get(ctx context.Context, id string, userID bson.ObjectID) (*model.ResearchNote, error)
	Create(ctx context.Context, userID bson.ObjectID, params ResearchNoteParams) (*model.ResearchNote, error)
	Update(ctx context.Context, id string, userID bson.ObjectID, params ResearchNoteParams) (*model.ResearchNote, error)
	Delete(ctx context.Context, id string, userID bson.ObjectID) error
}

// ResearchNoteParams defines the writable fields of a research note.
type ResearchNoteParams struct {
	Symbol         string
	Title          *string
	Thesis         string
	Risks          *string
	Catalysts      *string
	ReferenceLinks []string
}

var (
	ErrResearchNoteNotFound = errors.New("research note not found")
	ErrEmptyThesis          = errors.New("thesis must not be empty")
)

type researchUsecase struct {
	researchRepo repository.ResearchRepository
}

// NewResearchUsecase creates a new instance of ResearchUsecase.
func NewResearchUsecase(researchRepo repository.ResearchRepository) ResearchUsecase {
	return &researchUsecase{researchRepo: researchRepo}
}

func (u *researchUsecase) List(ctx context.Context, userID bson.ObjectID) ([]*model.ResearchNote, error) {
	return u.researchRepo.ListNotes(ctx, userID)
}

func (u *researchUsecase) Get(ctx context.Context, id string, userID bson.ObjectID) (*model.ResearchNote, error) {
	note, err := u.researchRepo.GetNote(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResearchNoteNotFound
		}

		return nil, err
	}

	return note, nil
}

func (u *researchUsecase) Create(
	ctx context.Context,
	userID bson.ObjectID,
	params ResearchNoteParams,
) (*model.ResearchNote, error) {
	fields, err := validateResearchParams(params)
	if err != nil {
		return nil, err
	}

	return u.researchRepo.CreateNote(ctx, &model.ResearchNote{
		UserID:         userID,
		Symbol:         fields.Symbol,
		Title:          fields.Title,
		Thesis:         fields.Thesis,
		Risks:          fields.Risks,
		Catalysts:      fields.Catalysts,
		ReferenceLinks: fields.ReferenceLinks,
	})
}

func (u *researchUsecase) Update(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	params ResearchNoteParams,
) (*model.ResearchNote, error) {
	fields, err := validateResearchParams(params)
	if err != nil {
		return nil, err
	}

	note, err := u.researchRepo.UpdateNote(ctx, id, userID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResearchNoteNotFound
		}

		return nil, err
	}

	return note, nil
}

func (u *researchUsecase) Delete(ctx context.Context, id string, userID bson.ObjectID) error {
	if err := u.researchRepo.DeleteNote(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResearchNoteNotFound
		}

		return err
	}

	return nil
}

func validateResearchParams(params ResearchNoteParams) (repository.ResearchNoteFields, error) {
	symbol, err := NormalizeSymbol(params.Symbol)
	if err != nil {
		return repository.ResearchNoteFields{}, err
	}

	if strings.TrimSpace(params.Thesis) == "" {
		return repository.ResearchNoteFields{}, ErrEmptyThesis
	}

	return repository.ResearchNoteFields{
		Symbol:         symbol,
		Title:          params.Title,
		Thesis:         params.Thesis,
		Risks:          params.Risks,
		Catalysts:      params.Catalysts,
		ReferenceLinks: params.ReferenceLinks,
	}, nil
}
