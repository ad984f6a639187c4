package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/repository"
)

type importFixture struct {
	importUC      CSVImportUsecase
	stockUC       StockUsecase
	watchlistUC   WatchlistUsecase
	brokerUC      BrokerUsecase
	stockRepo     *repository.MemoryStockRepository
	watchlistRepo *repository.MemoryWatchlistRepository
	userID        bson.ObjectID
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()

	stockRepo := repository.NewMemoryStockRepository()
	watchlistRepo := repository.NewMemoryWatchlistRepository()
	brokerRepo := repository.NewMemoryBrokerConnectionRepository()

	stockUC := NewStockUsecase(stockRepo)
	watchlistUC := NewWatchlistUsecase(watchlistRepo)
	brokerUC := NewBrokerUsecase(brokerRepo)

	return &importFixture{
		importUC:      NewCSVImportUsecase(stockUC, watchlistUC, brokerUC),
		stockUC:       stockUC,
		watchlistUC:   watchlistUC,
		brokerUC:      brokerUC,
		stockRepo:     stockRepo,
		watchlistRepo: watchlistRepo,
		userID:        bson.NewObjectID(),
	}
}

func TestPreview_HeaderAliasesAndQuoting(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)

	csv := "Ticker,Qty,Average Cost,Purchase Date,Memo\n" +
		"aapl,10,\"1,234.50\",2024-01-15,\"long term, core\"\n" +
		",5,100,2024-01-01,\n"

	preview, err := f.importUC.Preview(csv, "IBKR")
	require.NoError(t, err)
	require.Equal(t, "ibkr", preview.Provider)

	require.Len(t, preview.Items, 1)
	item := preview.Items[0]
	require.Equal(t, 2, item.Line)
	require.Equal(t, "AAPL", item.Symbol)
	require.Equal(t, 10.0, *item.Shares)
	require.Equal(t, 1234.50, *item.BuyPrice)
	require.Equal(t, "2024-01-15", *item.BuyDate)
	require.Equal(t, "long term, core", *item.Notes)

	require.Len(t, preview.Errors, 1)
	require.Equal(t, 3, preview.Errors[0].Line)
	require.Equal(t, "Missing symbol.", preview.Errors[0].Message)
}

func TestPreview_SepDirectiveAndSemicolons(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)

	csv := "sep=;\nsymbol;shares;buyprice\nMSFT;4;300.25\n"

	preview, err := f.importUC.Preview(csv, "degiro")
	require.NoError(t, err)
	require.Len(t, preview.Items, 1)
	require.Equal(t, 3, preview.Items[0].Line)
	require.Equal(t, "MSFT", preview.Items[0].Symbol)
	require.Equal(t, 4.0, *preview.Items[0].Shares)
	require.Nil(t, preview.Items[0].BuyDate)
}

func TestPreview_Failures(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)

	_, err := f.importUC.Preview("   \n  ", "ibkr")
	require.ErrorIs(t, err, ErrEmptyCSV)

	_, err = f.importUC.Preview("name,count\nfoo,1\n", "ibkr")
	require.ErrorIs(t, err, ErrMissingSymbolColumn)

	_, err = f.importUC.Preview("sep=,", "ibkr")
	require.ErrorIs(t, err, ErrMissingCSVHeader)

	_, err = f.importUC.Preview("symbol\nAAPL\n", "  ")
	require.ErrorIs(t, err, ErrInvalidProvider)
}

func TestCommit_InsertsUpdatesWatchlistAndErrors(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	// AAPL already exists; the CSV row only carries new share count.
	notes := "keep these notes"
	_, err := f.stockUC.Create(ctx, f.userID, StockParams{
		Symbol:   "AAPL",
		Shares:   5,
		BuyPrice: 120,
		BuyDate:  "2023-06-01",
		Notes:    &notes,
	})
	require.NoError(t, err)

	csv := "symbol,shares,buyprice,buydate\n" +
		"AAPL,12,,\n" +
		"MSFT,4,300,2024-02-01\n" +
		"GOOG,,,\n" +
		"NVDA,3,,\n"

	commit, err := f.importUC.Commit(ctx, f.userID, csv, "Interactive Brokers")
	require.NoError(t, err)
	require.Equal(t, "interactive-brokers", commit.Provider)

	// AAPL merged with the stored position.
	require.Len(t, commit.Updated, 1)
	require.Equal(t, "AAPL", commit.Updated[0].Symbol)
	require.Equal(t, 12.0, commit.Updated[0].Shares)
	require.Equal(t, 120.0, commit.Updated[0].BuyPrice)
	require.Equal(t, "keep these notes", *commit.Updated[0].Notes)

	require.Len(t, commit.Inserted, 1)
	require.Equal(t, "MSFT", commit.Inserted[0].Symbol)

	// GOOG had no position data, so it landed on the watchlist.
	items, err := f.watchlistUC.List(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "GOOG", items[0].Symbol)

	// NVDA had shares but neither a price nor an existing position.
	require.Len(t, commit.Errors, 1)
	require.Equal(t, 5, commit.Errors[0].Line)
	require.Equal(t, "Missing buyPrice (average_cost).", commit.Errors[0].Message)

	// The import is recorded against the broker connection.
	connection, err := f.brokerUC.Get(ctx, f.userID, "interactive-brokers")
	require.NoError(t, err)
	require.Equal(t, "csv", connection.Status)
}

func TestCommit_WatchlistRowIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	csv := "symbol\nGOOG\n"

	_, err := f.importUC.Commit(ctx, f.userID, csv, "ibkr")
	require.NoError(t, err)
	commit, err := f.importUC.Commit(ctx, f.userID, csv, "ibkr")
	require.NoError(t, err)
	require.Empty(t, commit.Errors)

	items, err := f.watchlistUC.List(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestNormalizeImportDate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2024-01-15":          "2024-01-15",
		"2024-01-15T10:30:00": "2024-01-15",
		"2024/01/15":          "2024-01-15",
		"01/15/2024":          "2024-01-15",
		"1/5/2024":            "2024-01-05",
		"01-15-2024":          "2024-01-15",
		"20240115":            "2024-01-15",
		"not a date":          "",
		"":                    "",
	}

	for raw, want := range cases {
		require.Equal(t, want, NormalizeImportDate(raw), "input %q", raw)
	}
}

func TestPreview_BOMPrefixedHeader(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)

	csv := "\uFEFFSymbol,Shares\nAAPL,10\n"

	preview, err := f.importUC.Preview(csv, "ibkr")
	require.NoError(t, err)
	require.Len(t, preview.Items, 1)
	require.Equal(t, "AAPL", preview.Items[0].Symbol)
	require.Equal(t, 10.0, *preview.Items[0].Shares)
}
