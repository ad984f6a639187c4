package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/repository"
)

// WatchlistUsecase defines the business logic for watchlist entries.
type WatchlistUsecase interface {
	List(ctx context.Context, userID bson.ObjectID) ([]*model.WatchlistItem, error)
	// Add inserts a symbol, returning the existing entry unchanged when the
	// symbol is already on the watchlist.
	Add(ctx context.Context, userID bson.ObjectID, symbol string) (*model.WatchlistItem, error)
	Delete(ctx context.Context, id string, userID bson.ObjectID) error
}

var ErrWatchlistItemNotFound = errors.New("watchlist item not found")

type watchlistUsecase struct {
	watchlistRepo repository.WatchlistRepository
}

// NewWatchlistUsecase creates a new instance of WatchlistUsecase.
func NewWatchlistUsecase(watchlistRepo repository.WatchlistRepository) WatchlistUsecase {
	return &watchlistUsecase{watchlistRepo: watchlistRepo}
}

func (u *watchlistUsecase) List(ctx context.Context, userID bson.ObjectID) ([]*model.WatchlistItem, error) {
	return u.watchlistRepo.ListItems(ctx, userID)
}

func (u *watchlistUsecase) Add(ctx context.Context, userID bson.ObjectID, symbol string) (*model.WatchlistItem, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	item, err := u.watchlistRepo.CreateItem(ctx, &model.WatchlistItem{
		UserID: userID,
		Symbol: normalized,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return u.watchlistRepo.GetItemBySymbol(ctx, userID, normalized)
		}

		return nil, err
	}

	return item, nil
}

func (u *watchlistUsecase) Delete(ctx context.Context, id string, userID bson.ObjectID) error {
	if err := u.watchlistRepo.DeleteItem(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWatchlistItemNotFound
		}

		return err
	}

	return nil
}
