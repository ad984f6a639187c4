package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/usecase"
)

// WatchlistHandler serves the symbol watchlist.
type WatchlistHandler struct {
	watchlistUC usecase.WatchlistUsecase
	logger      zerolog.Logger
}

// NewWatchlistHandler creates a new instance of WatchlistHandler.
func NewWatchlistHandler(watchlistUC usecase.WatchlistUsecase, logger zerolog.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlistUC: watchlistUC, logger: logger}
}

// Mount registers the watchlist routes on r.
func (h *WatchlistHandler) Mount(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{watchlistId}", h.delete)
}

func (h *WatchlistHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.watchlistUC.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to list watchlist")
		return
	}

	resp := make([]watchlistItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, watchlistItemResponseFrom(item))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *WatchlistHandler) create(w http.ResponseWriter, r *http.Request) {
	var req watchlistItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.watchlistUC.Add(r.Context(), userIDFrom(r.Context()), req.Symbol)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidSymbol) {
			writeError(w, http.StatusBadRequest, "invalid_symbol", err.Error())
			return
		}
		writeInternalError(w, h.logger, err, "failed to add watchlist item")
		return
	}

	writeJSON(w, http.StatusOK, watchlistItemResponseFrom(item))
}

func (h *WatchlistHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.watchlistUC.Delete(r.Context(), chi.URLParam(r, "watchlistId"), userIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, usecase.ErrWatchlistItemNotFound) {
			writeError(w, http.StatusNotFound, "watchlist_item_not_found", err.Error())
			return
		}
		writeInternalError(w, h.logger, err, "failed to delete watchlist item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func watchlistItemResponseFrom(item *model.WatchlistItem) watchlistItemResponse {
	return watchlistItemResponse{ID: item.ID.Hex(), Symbol: item.Symbol}
}
