package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/repository"
)

func newPortfolioFixture(t *testing.T) (PortfolioUsecase, StockUsecase, bson.ObjectID) {
	t.Helper()

	stockRepo := repository.NewMemoryStockRepository()
	return NewPortfolioUsecase(stockRepo), NewStockUsecase(stockRepo), bson.NewObjectID()
}

func TestSummary_CostBasedAllocation(t *testing.T) {
	t.Parallel()
	portfolioUC, stockUC, userID := newPortfolioFixture(t)
	ctx := context.Background()

	_, err := stockUC.Create(ctx, userID, StockParams{Symbol: "AAPL", Shares: 10, BuyPrice: 100, BuyDate: "2024-01-01"})
	require.NoError(t, err)
	_, err = stockUC.Create(ctx, userID, StockParams{Symbol: "MSFT", Shares: 2, BuyPrice: 300, BuyDate: "2024-01-01"})
	require.NoError(t, err)
	_, err = stockUC.Create(ctx, userID, StockParams{Symbol: "NVDA", Shares: 1, BuyPrice: 800, BuyDate: "2024-01-01"})
	require.NoError(t, err)

	summary, err := portfolioUC.Summary(ctx, userID)
	require.NoError(t, err)

	require.Equal(t, "USD", summary.BaseCurrency)
	require.Equal(t, 2400.0, summary.TotalCost)
	require.Equal(t, summary.TotalCost, summary.TotalValue)
	require.Zero(t, summary.UnrealizedPnl)
	require.Zero(t, summary.RealizedPnl)

	// Allocation is sorted by value, largest first.
	require.Len(t, summary.Allocation, 3)
	require.Equal(t, "AAPL", summary.Allocation[0].Symbol)
	require.Equal(t, 1000.0, summary.Allocation[0].Value)
	require.Equal(t, "NVDA", summary.Allocation[1].Symbol)
	require.Equal(t, "MSFT", summary.Allocation[2].Symbol)

	var sum float64
	for _, item := range summary.Allocation {
		sum += item.Value
	}
	require.Equal(t, summary.TotalCost, sum)
}

func TestSummary_EmptyPortfolio(t *testing.T) {
	t.Parallel()
	portfolioUC, _, userID := newPortfolioFixture(t)

	summary, err := portfolioUC.Summary(context.Background(), userID)
	require.NoError(t, err)
	require.Zero(t, summary.TotalValue)
	require.Empty(t, summary.Allocation)
}

func TestPerformance_SinglePointToday(t *testing.T) {
	t.Parallel()
	portfolioUC, stockUC, userID := newPortfolioFixture(t)
	ctx := context.Background()

	_, err := stockUC.Create(ctx, userID, StockParams{Symbol: "AAPL", Shares: 3, BuyPrice: 50, BuyDate: "2024-01-01"})
	require.NoError(t, err)

	performance, err := portfolioUC.Performance(ctx, userID)
	require.NoError(t, err)
	require.Len(t, performance.Points, 1)
	require.Equal(t, 150.0, performance.Points[0].Value)
	require.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, performance.Points[0].Date)
}

func TestPnl_ZeroPerHolding(t *testing.T) {
	t.Parallel()
	portfolioUC, stockUC, userID := newPortfolioFixture(t)
	ctx := context.Background()

	_, err := stockUC.Create(ctx, userID, StockParams{Symbol: "AAPL", Shares: 3, BuyPrice: 50, BuyDate: "2024-01-01"})
	require.NoError(t, err)
	_, err = stockUC.Create(ctx, userID, StockParams{Symbol: "MSFT", Shares: 1, BuyPrice: 300, BuyDate: "2024-01-01"})
	require.NoError(t, err)

	pnl, err := portfolioUC.Pnl(ctx, userID)
	require.NoError(t, err)
	require.Len(t, pnl.Items, 2)
	for _, item := range pnl.Items {
		require.Zero(t, item.RealizedPnl)
		require.Zero(t, item.UnrealizedPnl)
		require.Equal(t, "USD", item.Currency)
	}
}
