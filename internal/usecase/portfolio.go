package usecase

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/repository"
)

// PortfolioUsecase aggregates position records into portfolio views. Values
// are cost-based: market pricing is out of scope, so total value equals total
// cost and profit figures are zero.
type PortfolioUsecase interface {
	Summary(ctx context.Context, userID bson.ObjectID) (*PortfolioSummary, error)
	Performance(ctx context.Context, userID bson.ObjectID) (*PortfolioPerformance, error)
	Pnl(ctx context.Context, userID bson.ObjectID) (*PortfolioPnl, error)
}

const baseCurrency = "USD"

// AllocationItem is the cost-basis value of one holding.
type AllocationItem struct {
	Symbol   string
	Value    float64
	Currency string
}

// PortfolioSummary is the aggregate view of all holdings.
type PortfolioSummary struct {
	BaseCurrency  string
	TotalValue    float64
	TotalCost     float64
	UnrealizedPnl float64
	RealizedPnl   float64
	Allocation    []AllocationItem
}

// PerformancePoint is a dated portfolio value.
type PerformancePoint struct {
	Date  string
	Value float64
}

// PortfolioPerformance is the value-over-time view. Without price history it
// carries a single point for today.
type PortfolioPerformance struct {
	BaseCurrency string
	Points       []PerformancePoint
}

// PnlBySymbol is the profit breakdown for one holding.
type PnlBySymbol struct {
	Symbol        string
	Currency      string
	RealizedPnl   float64
	UnrealizedPnl float64
}

// PortfolioPnl is the per-symbol profit view.
type PortfolioPnl struct {
	BaseCurrency string
	Items        []PnlBySymbol
}

type portfolioUsecase struct {
	stockRepo repository.StockRepository
}

// NewPortfolioUsecase creates a new instance of PortfolioUsecase.
func NewPortfolioUsecase(stockRepo repository.StockRepository) PortfolioUsecase {
	return &portfolioUsecase{stockRepo: stockRepo}
}

func (u *portfolioUsecase) Summary(ctx context.Context, userID bson.ObjectID) (*PortfolioSummary, error) {
	stocks, err := u.stockRepo.ListStocks(ctx, userID)
	if err != nil {
		return nil, err
	}

	allocation := make([]AllocationItem, 0, len(stocks))
	var totalCost float64
	for _, stock := range stocks {
		value := stock.Shares * stock.BuyPrice
		totalCost += value
		allocation = append(allocation, AllocationItem{
			Symbol:   stock.Symbol,
			Value:    value,
			Currency: baseCurrency,
		})
	}

	sort.Slice(allocation, func(i, j int) bool {
		return allocation[i].Value > allocation[j].Value
	})

	return &PortfolioSummary{
		BaseCurrency:  baseCurrency,
		TotalValue:    totalCost,
		TotalCost:     totalCost,
		UnrealizedPnl: 0,
		RealizedPnl:   0,
		Allocation:    allocation,
	}, nil
}

func (u *portfolioUsecase) Performance(ctx context.Context, userID bson.ObjectID) (*PortfolioPerformance, error) {
	stocks, err := u.stockRepo.ListStocks(ctx, userID)
	if err != nil {
		return nil, err
	}

	var totalValue float64
	for _, stock := range stocks {
		totalValue += stock.Shares * stock.BuyPrice
	}

	return &PortfolioPerformance{
		BaseCurrency: baseCurrency,
		Points: []PerformancePoint{
			{Date: time.Now().UTC().Format(BuyDateLayout), Value: totalValue},
		},
	}, nil
}

func (u *portfolioUsecase) Pnl(ctx context.Context, userID bson.ObjectID) (*PortfolioPnl, error) {
	stocks, err := u.stockRepo.ListStocks(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]PnlBySymbol, 0, len(stocks))
	for _, stock := range stocks {
		items = append(items, PnlBySymbol{
			Symbol:        stock.Symbol,
			Currency:      baseCurrency,
			RealizedPnl:   0,
			UnrealizedPnl: 0,
		})
	}

	return &PortfolioPnl{BaseCurrency: baseCurrency, Items: items}, nil
}
