package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/repository"
)

// TargetUsecase defines the business logic for price targets.
type TargetUsecase interface {
	List(ctx context.Context, userID bson.ObjectID) ([]*model.Target, error)
	Create(ctx context.Context, userID bson.ObjectID, params TargetParams) (*model.Target, error)
	Update(ctx context.Context, id string, userID bson.ObjectID, params TargetParams) (*model.Target, error)
	Delete(ctx context.Context, id string, userID bson.ObjectID) error
}

// TargetParams defines the writable fields of a price target. TargetDate is
// an optional YYYY-MM-DD string.
type TargetParams struct {
	Symbol      string
	Scenario    string
	TargetPrice float64
	TargetDate  *string
	Rationale   *string
}

var (
	ErrTargetNotFound    = errors.New("target not found")
	ErrInvalidScenario   = errors.New("scenario must not be empty")
	ErrInvalidTargetDate = errors.New("invalid target date, expected YYYY-MM-DD")
)

type targetUsecase struct {
	targetRepo repository.TargetRepository
}

// NewTargetUsecase creates a new instance of TargetUsecase.
func NewTargetUsecase(targetRepo repository.TargetRepository) TargetUsecase {
	return &targetUsecase{targetRepo: targetRepo}
}

func (u *targetUsecase) List(ctx context.Context, userID bson.ObjectID) ([]*model.Target, error) {
	return u.targetRepo.ListTargets(ctx, userID)
}

func (u *targetUsecase) Create(
	ctx context.Context,
	userID bson.ObjectID,
	params TargetParams,
) (*model.Target, error) {
	fields, err := validateTargetParams(params)
	if err != nil {
		return nil, err
	}

	return u.targetRepo.CreateTarget(ctx, &model.Target{
		UserID:      userID,
		Symbol:      fields.Symbol,
		Scenario:    fields.Scenario,
		TargetPrice: fields.TargetPrice,
		TargetDate:  fields.TargetDate,
		Rationale:   fields.Rationale,
	})
}

func (u *targetUsecase) Update(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	params TargetParams,
) (*model.Target, error) {
	fields, err := validateTargetParams(params)
	if err != nil {
		return nil, err
	}

	target, err := u.targetRepo.UpdateTarget(ctx, id, userID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTargetNotFound
		}

		return nil, err
	}

	return target, nil
}

func (u *targetUsecase) Delete(ctx context.Context, id string, userID bson.ObjectID) error {
	if err := u.targetRepo.DeleteTarget(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTargetNotFound
		}

		return err
	}

	return nil
}

func validateTargetParams(params TargetParams) (repository.TargetFields, error) {
	symbol, err := NormalizeSymbol(params.Symbol)
	if err != nil {
		return repository.TargetFields{}, err
	}

	if strings.TrimSpace(params.Scenario) == "" {
		return repository.TargetFields{}, ErrInvalidScenario
	}

	var targetDate *time.Time
	if params.TargetDate != nil && strings.TrimSpace(*params.TargetDate) != "" {
		parsed, err := time.ParseInLocation(BuyDateLayout, *params.TargetDate, time.UTC)
		if err != nil {
			return repository.TargetFields{}, ErrInvalidTargetDate
		}
		targetDate = &parsed
	}

	return repository.TargetFields{
		Symbol:      symbol,
		Scenario:    params.Scenario,
		TargetPrice: params.TargetPrice,
		TargetDate:  targetDate,
		Rationale:   params.Rationale,
	}, nil
}
