package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/usecase"
)

// StockHandler serves CRUD for position records.
type StockHandler struct {
	stockUC usecase.StockUsecase
	logger  zerolog.Logger
}

// NewStockHandler creates a new instance of StockHandler.
func NewStockHandler(stockUC usecase.StockUsecase, logger zerolog.Logger) *StockHandler {
	return &StockHandler{stockUC: stockUC, logger: logger}
}

// Mount registers the stock routes on r.
func (h *StockHandler) Mount(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{stockId}", h.get)
	r.Put("/{stockId}", h.update)
	r.Delete("/{stockId}", h.delete)
}

func (h *StockHandler) list(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.stockUC.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to list stocks")
		return
	}

	resp := make([]stockResponse, 0, len(stocks))
	for _, stock := range stocks {
		resp = append(resp, stockResponseFrom(stock))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *StockHandler) get(w http.ResponseWriter, r *http.Request) {
	stock, err := h.stockUC.Get(r.Context(), chi.URLParam(r, "stockId"), userIDFrom(r.Context()))
	if err != nil {
		h.writeStockError(w, err, "failed to get stock")
		return
	}

	writeJSON(w, http.StatusOK, stockResponseFrom(stock))
}

func (h *StockHandler) create(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stock, err := h.stockUC.Create(r.Context(), userIDFrom(r.Context()), stockParamsFrom(req))
	if err != nil {
		h.writeStockError(w, err, "failed to create stock")
		return
	}

	writeJSON(w, http.StatusOK, stockResponseFrom(stock))
}

func (h *StockHandler) update(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stock, err := h.stockUC.Update(
		r.Context(),
		chi.URLParam(r, "stockId"),
		userIDFrom(r.Context()),
		stockParamsFrom(req),
	)
	if err != nil {
		h.writeStockError(w, err, "failed to update stock")
		return
	}

	writeJSON(w, http.StatusOK, stockResponseFrom(stock))
}

func (h *StockHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.stockUC.Delete(r.Context(), chi.URLParam(r, "stockId"), userIDFrom(r.Context())); err != nil {
		h.writeStockError(w, err, "failed to delete stock")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StockHandler) writeStockError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrStockNotFound):
		writeError(w, http.StatusNotFound, "stock_not_found", err.Error())
	case errors.Is(err, usecase.ErrInvalidSymbol):
		writeError(w, http.StatusBadRequest, "invalid_symbol", err.Error())
	case errors.Is(err, usecase.ErrInvalidBuyDate):
		writeError(w, http.StatusBadRequest, "invalid_buy_date", err.Error())
	default:
		writeInternalError(w, h.logger, err, msg)
	}
}

func stockParamsFrom(req stockRequest) usecase.StockParams {
	return usecase.StockParams{
		Symbol:   req.Symbol,
		Shares:   req.Shares,
		BuyPrice: req.BuyPrice,
		BuyDate:  req.BuyDate,
		Notes:    req.Notes,
	}
}

func stockResponseFrom(stock *model.Stock) stockResponse {
	return stockResponse{
		ID:       stock.ID.Hex(),
		Symbol:   stock.Symbol,
		Shares:   stock.Shares,
		BuyPrice: stock.BuyPrice,
		BuyDate:  stock.BuyDate.UTC().Format(usecase.BuyDateLayout),
		Notes:    stock.Notes,
	}
}
