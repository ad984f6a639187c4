package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/repository"
)

// BrokerUsecase defines the business logic for broker connections.
type BrokerUsecase interface {
	List(ctx context.Context, userID bson.ObjectID) ([]*model.BrokerConnection, error)
	Get(ctx context.Context, userID bson.ObjectID, provider string) (*model.BrokerConnection, error)
	// RecordCSVImport marks a provider as having supplied data through a CSV
	// upload, creating the connection row on first import.
	RecordCSVImport(ctx context.Context, userID bson.ObjectID, provider string) (*model.BrokerConnection, error)
}

const maxProviderLength = 64

var (
	ErrInvalidProvider = errors.New("invalid broker provider")
	ErrBrokerNotFound  = errors.New("broker not found")
)

type brokerUsecase struct {
	brokerRepo repository.BrokerConnectionRepository
}

// NewBrokerUsecase creates a new instance of BrokerUsecase.
func NewBrokerUsecase(brokerRepo repository.BrokerConnectionRepository) BrokerUsecase {
	return &brokerUsecase{brokerRepo: brokerRepo}
}

func (u *brokerUsecase) List(ctx context.Context, userID bson.ObjectID) ([]*model.BrokerConnection, error) {
	return u.brokerRepo.ListConnections(ctx, userID)
}

func (u *brokerUsecase) Get(
	ctx context.Context,
	userID bson.ObjectID,
	provider string,
) (*model.BrokerConnection, error) {
	normalized, err := NormalizeProvider(provider)
	if err != nil {
		return nil, err
	}

	connection, err := u.brokerRepo.GetConnectionByProvider(ctx, userID, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBrokerNotFound
		}

		return nil, err
	}

	return connection, nil
}

func (u *brokerUsecase) RecordCSVImport(
	ctx context.Context,
	userID bson.ObjectID,
	provider string,
) (*model.BrokerConnection, error) {
	normalized, err := NormalizeProvider(provider)
	if err != nil {
		return nil, err
	}

	return u.brokerRepo.UpsertCSVImport(ctx, userID, normalized, time.Now())
}

// NormalizeProvider turns a free-form provider name into a stable slug:
// lowercase, alphanumerics and underscores kept, every other run of
// characters collapsed into a single dash, outer dashes stripped.
func NormalizeProvider(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidProvider
	}

	var out strings.Builder
	out.Grow(len(trimmed))
	wroteDash := false
	for _, r := range strings.ToLower(trimmed) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out.WriteRune(r)
			wroteDash = false
		case r == '_':
			out.WriteByte('_')
			wroteDash = false
		default:
			if !wroteDash {
				out.WriteByte('-')
				wroteDash = true
			}
		}
	}

	normalized := strings.Trim(out.String(), "-")
	if normalized == "" || len([]rune(normalized)) > maxProviderLength {
		return "", ErrInvalidProvider
	}

	return normalized, nil
}
