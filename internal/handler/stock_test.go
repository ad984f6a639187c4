package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func registerAndLogin(t *testing.T, router http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": "password1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[sessionResponse](t, rec).Token
}

func TestStockCRUD_EndToEnd(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "crud@example.com")

	// Empty list to start.
	rec := doJSON(t, router, http.MethodGet, "/stocks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	// Create. Symbols are upper-cased on the way in.
	rec = doJSON(t, router, http.MethodPost, "/stocks", token, map[string]any{
		"symbol":   "aapl",
		"shares":   10,
		"buyPrice": 150.5,
		"buyDate":  "2024-01-15",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeBody[stockResponse](t, rec)
	require.Equal(t, "AAPL", created.Symbol)
	require.Equal(t, "2024-01-15", created.BuyDate)

	// Get.
	rec = doJSON(t, router, http.MethodGet, "/stocks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, created, decodeBody[stockResponse](t, rec))

	// Update.
	rec = doJSON(t, router, http.MethodPut, "/stocks/"+created.ID, token, map[string]any{
		"symbol":   "AAPL",
		"shares":   12,
		"buyPrice": 148.0,
		"buyDate":  "2024-01-15",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[stockResponse](t, rec)
	require.Equal(t, float64(12), updated.Shares)

	// Bad date is rejected.
	rec = doJSON(t, router, http.MethodPut, "/stocks/"+created.ID, token, map[string]any{
		"symbol":  "AAPL",
		"buyDate": "15/01/2024x",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_buy_date", decodeBody[errorBody](t, rec).Error.Code)

	// Delete, then the stock is gone.
	rec = doJSON(t, router, http.MethodDelete, "/stocks/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/stocks/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "stock_not_found", decodeBody[errorBody](t, rec).Error.Code)
}

func TestStocks_ScopedToUser(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)
	ownerToken := registerAndLogin(t, router, "owner@example.com")
	otherToken := registerAndLogin(t, router, "other@example.com")

	rec := doJSON(t, router, http.MethodPost, "/stocks", ownerToken, map[string]any{
		"symbol":  "MSFT",
		"shares":  1,
		"buyDate": "2024-03-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeBody[stockResponse](t, rec)

	rec = doJSON(t, router, http.MethodGet, "/stocks/"+created.ID, otherToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/stocks", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestWatchlist_EndToEnd(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "watch@example.com")

	rec := doJSON(t, router, http.MethodPost, "/watchlist", token, map[string]string{
		"symbol": "nvda",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	item := decodeBody[watchlistItemResponse](t, rec)
	require.Equal(t, "NVDA", item.Symbol)

	// Adding the same symbol again returns the existing item.
	rec = doJSON(t, router, http.MethodPost, "/watchlist", token, map[string]string{
		"symbol": "NVDA",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, item.ID, decodeBody[watchlistItemResponse](t, rec).ID)

	rec = doJSON(t, router, http.MethodDelete, "/watchlist/"+item.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/watchlist", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestBrokerCSVImport_Multipart(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "import@example.com")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("provider", "Interactive Brokers"))
	file, err := form.CreateFormFile("file", "positions.csv")
	require.NoError(t, err)
	fmt.Fprint(file, "Symbol,Quantity,Average Cost,Purchase Date\nAAPL,10,150.5,2024-01-15\nGOOG,,,\n")
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/brokers/import/csv/commit", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	commit := decodeBody[csvImportCommitResponse](t, rec)
	require.Equal(t, "interactive-brokers", commit.Provider)
	require.Len(t, commit.Inserted, 1)
	require.Equal(t, "AAPL", commit.Inserted[0].Symbol)
	require.Empty(t, commit.Errors)

	// The position row landed in stocks, the bare row in the watchlist.
	rec = doJSON(t, router, http.MethodGet, "/stocks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stocks := decodeBody[[]stockResponse](t, rec)
	require.Len(t, stocks, 1)

	rec = doJSON(t, router, http.MethodGet, "/watchlist", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	watchlist := decodeBody[[]watchlistItemResponse](t, rec)
	require.Len(t, watchlist, 1)
	require.Equal(t, "GOOG", watchlist[0].Symbol)

	// The import is recorded as a CSV broker connection.
	rec = doJSON(t, router, http.MethodGet, "/brokers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	connections := decodeBody[[]brokerConnectionResponse](t, rec)
	require.Len(t, connections, 1)
	require.Equal(t, "interactive-brokers", connections[0].Provider)
	require.Equal(t, "csv", connections[0].Status)
}

func TestBrokerCSVImport_RawBodyWithQueryProvider(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "rawimport@example.com")

	body := bytes.NewBufferString("ticker;qty;avg cost\nMSFT;5;300\n")
	req := httptest.NewRequest(http.MethodPost, "/brokers/import/csv?provider=schwab", body)
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	preview := decodeBody[csvImportPreviewResponse](t, rec)
	require.Equal(t, "schwab", preview.Provider)
	require.Len(t, preview.Items, 1)
	require.Equal(t, "MSFT", preview.Items[0].Symbol)

	// Missing provider is an error.
	req = httptest.NewRequest(http.MethodPost, "/brokers/import/csv", bytes.NewBufferString("symbol\nAAPL\n"))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioSummary_EndToEnd(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "summary@example.com")

	for _, body := range []map[string]any{
		{"symbol": "AAPL", "shares": 10, "buyPrice": 100, "buyDate": "2024-01-01"},
		{"symbol": "MSFT", "shares": 2, "buyPrice": 200, "buyDate": "2024-02-01"},
	} {
		rec := doJSON(t, router, http.MethodPost, "/stocks", token, body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/portfolio/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[portfolioSummaryResponse](t, rec)
	require.Equal(t, float64(1400), summary.TotalValue)
	require.Equal(t, summary.TotalCost, summary.TotalValue)
	require.Len(t, summary.Allocation, 2)
	require.Equal(t, "AAPL", summary.Allocation[0].Symbol)
}
