package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MarketHandler serves the market data endpoints. Until a data provider is
// wired in they return zero values in the agreed shapes so the client can
// develop against them.
type MarketHandler struct{}

// NewMarketHandler creates a new instance of MarketHandler.
func NewMarketHandler() *MarketHandler {
	return &MarketHandler{}
}

// Mount registers the market data routes on r.
func (h *MarketHandler) Mount(r chi.Router) {
	r.Get("/quote/{symbol}", h.quote)
	r.Get("/history/{symbol}", h.history)
	r.Get("/search", h.search)
	r.Get("/fx", h.fx)
}

func (h *MarketHandler) quote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, quoteResponse{
		Symbol:   chi.URLParam(r, "symbol"),
		Price:    0,
		Currency: "USD",
		AsOf:     "1970-01-01",
	})
}

func (h *MarketHandler) history(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, historyResponse{
		Symbol:   chi.URLParam(r, "symbol"),
		Currency: "USD",
		Bars:     []priceBarResponse{},
	})
}

func (h *MarketHandler) search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []searchResultResponse{})
}

func (h *MarketHandler) fx(w http.ResponseWriter, r *http.Request) {
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		pair = "EURUSD"
	}
	pair = strings.ReplaceAll(pair, "/", "")

	base, quote := pair, ""
	if len(pair) >= 6 {
		base = pair[:3]
		quote = pair[len(pair)-3:]
	}

	writeJSON(w, http.StatusOK, fxRateResponse{
		Base:  base,
		Quote: quote,
		Rate:  1.0,
		Date:  "1970-01-01",
	})
}
