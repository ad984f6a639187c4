package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/usecase"
)

// TargetHandler serves CRUD for price targets.
type TargetHandler struct {
	targetUC usecase.TargetUsecase
	logger   zerolog.Logger
}

// NewTargetHandler creates a new instance of TargetHandler.
func NewTargetHandler(targetUC usecase.TargetUsecase, logger zerolog.Logger) *TargetHandler {
	return &TargetHandler{targetUC: targetUC, logger: logger}
}

// Mount registers the target routes on r.
func (h *TargetHandler) Mount(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{targetId}", h.update)
	r.Delete("/{targetId}", h.delete)
}

func (h *TargetHandler) list(w http.ResponseWriter, r *http.Request) {
	targets, err := h.targetUC.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to list targets")
		return
	}

	resp := make([]targetResponse, 0, len(targets))
	for _, target := range targets {
		resp = append(resp, targetResponseFrom(target))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *TargetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	target, err := h.targetUC.Create(r.Context(), userIDFrom(r.Context()), targetParamsFrom(req))
	if err != nil {
		h.writeTargetError(w, err, "failed to create target")
		return
	}

	writeJSON(w, http.StatusOK, targetResponseFrom(target))
}

func (h *TargetHandler) update(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	target, err := h.targetUC.Update(
		r.Context(),
		chi.URLParam(r, "targetId"),
		userIDFrom(r.Context()),
		targetParamsFrom(req),
	)
	if err != nil {
		h.writeTargetError(w, err, "failed to update target")
		return
	}

	writeJSON(w, http.StatusOK, targetResponseFrom(target))
}

func (h *TargetHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.targetUC.Delete(r.Context(), chi.URLParam(r, "targetId"), userIDFrom(r.Context()))
	if err != nil {
		h.writeTargetError(w, err, "failed to delete target")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TargetHandler) writeTargetError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrTargetNotFound):
		writeError(w, http.StatusNotFound, "target_not_found", err.Error())
	case errors.Is(err, usecase.ErrInvalidSymbol):
		writeError(w, http.StatusBadRequest, "invalid_symbol", err.Error())
	case errors.Is(err, usecase.ErrInvalidScenario):
		writeError(w, http.StatusBadRequest, "invalid_scenario", err.Error())
	case errors.Is(err, usecase.ErrInvalidTargetDate):
		writeError(w, http.StatusBadRequest, "invalid_target_date", err.Error())
	default:
		writeInternalError(w, h.logger, err, msg)
	}
}

func targetParamsFrom(req targetRequest) usecase.TargetParams {
	return usecase.TargetParams{
		Symbol:      req.Symbol,
		Scenario:    req.Scenario,
		TargetPrice: req.TargetPrice,
		TargetDate:  req.TargetDate,
		Rationale:   req.Rationale,
	}
}

func targetResponseFrom(target *model.Target) targetResponse {
	resp := targetResponse{
		ID:          target.ID.Hex(),
		Symbol:      target.Symbol,
		Scenario:    target.Scenario,
		TargetPrice: target.TargetPrice,
		Rationale:   target.Rationale,
	}
	if target.TargetDate != nil {
		date := target.TargetDate.UTC().Format(usecase.BuyDateLayout)
		resp.TargetDate = &date
	}
	return resp
}
