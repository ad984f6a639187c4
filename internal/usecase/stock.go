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

// StockUsecase defines the business logic for position records.
type StockUsecase interface {
	List(ctx context.Context, userID bson.ObjectID) ([]*model.Stock, error)
	Get(ctx context.Context, id string, userID bson.ObjectID) (*model.Stock, error)
	GetBySymbol(ctx context.Context, userID bson.ObjectID, symbol string) (*model.Stock, error)
	Create(ctx context.Context, userID bson.ObjectID, params StockParams) (*model.Stock, error)
	Update(ctx context.Context, id string, userID bson.ObjectID, params StockParams) (*model.Stock, error)
	Delete(ctx context.Context, id string, userID bson.ObjectID) error
}

// StockParams defines the writable fields of a position. BuyDate is a
// YYYY-MM-DD string the way it appears on the wire.
type StockParams struct {
	Symbol   string
	Shares   float64
	BuyPrice float64
	BuyDate  string
	Notes    *string
}

// BuyDateLayout is the date-only format used for buy dates across the API.
const BuyDateLayout = "2006-01-02"

var (
	ErrStockNotFound  = errors.New("stock not found")
	ErrInvalidSymbol  = errors.New("invalid stock symbol")
	ErrInvalidBuyDate = errors.New("invalid buy date, expected YYYY-MM-DD")
)

type stockUsecase struct {
	stockRepo repository.StockRepository
}

// NewStockUsecase creates a new instance of StockUsecase.
func NewStockUsecase(stockRepo repository.StockRepository) StockUsecase {
	return &stockUsecase{stockRepo: stockRepo}
}

func (u *stockUsecase) List(ctx context.Context, userID bson.ObjectID) ([]*model.Stock, error) {
	return u.stockRepo.ListStocks(ctx, userID)
}

func (u *stockUsecase) Get(ctx context.Context, id string, userID bson.ObjectID) (*model.Stock, error) {
	stock, err := u.stockRepo.GetStock(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStockNotFound
		}

		return nil, err
	}

	return stock, nil
}

func (u *stockUsecase) GetBySymbol(ctx context.Context, userID bson.ObjectID, symbol string) (*model.Stock, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	stock, err := u.stockRepo.GetStockBySymbol(ctx, userID, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStockNotFound
		}

		return nil, err
	}

	return stock, nil
}

func (u *stockUsecase) Create(ctx context.Context, userID bson.ObjectID, params StockParams) (*model.Stock, error) {
	fields, err := validateStockParams(params)
	if err != nil {
		return nil, err
	}

	return u.stockRepo.CreateStock(ctx, &model.Stock{
		UserID:   userID,
		Symbol:   fields.Symbol,
		Shares:   fields.Shares,
		BuyPrice: fields.BuyPrice,
		BuyDate:  fields.BuyDate,
		Notes:    fields.Notes,
	})
}

func (u *stockUsecase) Update(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	params StockParams,
) (*model.Stock, error) {
	fields, err := validateStockParams(params)
	if err != nil {
		return nil, err
	}

	stock, err := u.stockRepo.UpdateStock(ctx, id, userID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStockNotFound
		}

		return nil, err
	}

	return stock, nil
}

func (u *stockUsecase) Delete(ctx context.Context, id string, userID bson.ObjectID) error {
	if err := u.stockRepo.DeleteStock(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStockNotFound
		}

		return err
	}

	return nil
}

func validateStockParams(params StockParams) (repository.StockFields, error) {
	symbol, err := NormalizeSymbol(params.Symbol)
	if err != nil {
		return repository.StockFields{}, err
	}

	buyDate, err := ParseBuyDate(params.BuyDate)
	if err != nil {
		return repository.StockFields{}, err
	}

	return repository.StockFields{
		Symbol:   symbol,
		Shares:   params.Shares,
		BuyPrice: params.BuyPrice,
		BuyDate:  buyDate,
		Notes:    params.Notes,
	}, nil
}

// NormalizeSymbol trims surrounding whitespace and uppercases a ticker
// symbol.
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", ErrInvalidSymbol
	}

	return symbol, nil
}

// ParseBuyDate parses a YYYY-MM-DD string as a UTC date.
func ParseBuyDate(raw string) (time.Time, error) {
	buyDate, err := time.ParseInLocation(BuyDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidBuyDate
	}

	return buyDate, nil
}
