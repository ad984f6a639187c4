package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/usecase"
)

// ResearchHandler serves CRUD for research notes.
type ResearchHandler struct {
	researchUC usecase.ResearchUsecase
	logger     zerolog.Logger
}

// NewResearchHandler creates a new instance of ResearchHandler.
func NewResearchHandler(researchUC usecase.ResearchUsecase, logger zerolog.Logger) *ResearchHandler {
	return &ResearchHandler{researchUC: researchUC, logger: logger}
}

// Mount registers the research routes on r.
func (h *ResearchHandler) Mount(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{researchId}", h.get)
	r.Put("/{researchId}", h.update)
	r.Delete("/{researchId}", h.delete)
}

func (h *ResearchHandler) list(w http.ResponseWriter, r *http.Request) {
	notes, err := h.researchUC.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to list research notes")
		return
	}

	resp := make([]researchNoteResponse, 0, len(notes))
	for _, note := range notes {
		resp = append(resp, researchNoteResponseFrom(note))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ResearchHandler) get(w http.ResponseWriter, r *http.Request) {
	note, err := h.researchUC.Get(r.Context(), chi.URLParam(r, "researchId"), userIDFrom(r.Context()))
	if err != nil {
		h.writeResearchError(w, err, "failed to get research note")
		return
	}

	writeJSON(w, http.StatusOK, researchNoteResponseFrom(note))
}

func (h *ResearchHandler) create(w http.ResponseWriter, r *http.Request) {
	var req researchNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.researchUC.Create(r.Context(), userIDFrom(r.Context()), researchParamsFrom(req))
	if err != nil {
		h.writeResearchError(w, err, "failed to create research note")
		return
	}

	writeJSON(w, http.StatusOK, researchNoteResponseFrom(note))
}

func (h *ResearchHandler) update(w http.ResponseWriter, r *http.Request) {
	var req researchNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.researchUC.Update(
		r.Context(),
		chi.URLParam(r, "researchId"),
		userIDFrom(r.Context()),
		researchParamsFrom(req),
	)
	if err != nil {
		h.writeResearchError(w, err, "failed to update research note")
		return
	}

	writeJSON(w, http.StatusOK, researchNoteResponseFrom(note))
}

func (h *ResearchHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.researchUC.Delete(r.Context(), chi.URLParam(r, "researchId"), userIDFrom(r.Context()))
	if err != nil {
		h.writeResearchError(w, err, "failed to delete research note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ResearchHandler) writeResearchError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrResearchNoteNotFound):
		writeError(w, http.StatusNotFound, "research_note_not_found", err.Error())
	case errors.Is(err, usecase.ErrInvalidSymbol):
		writeError(w, http.StatusBadRequest, "invalid_symbol", err.Error())
	case errors.Is(err, usecase.ErrEmptyThesis):
		writeError(w, http.StatusBadRequest, "empty_thesis", err.Error())
	default:
		writeInternalError(w, h.logger, err, msg)
	}
}

func researchParamsFrom(req researchNoteRequest) usecase.ResearchNoteParams {
	return usecase.ResearchNoteParams{
		Symbol:         req.Symbol,
		Title:          req.Title,
		Thesis:         req.Thesis,
		Risks:          req.Risks,
		Catalysts:      req.Catalysts,
		ReferenceLinks: req.ReferenceLinks,
	}
}

func researchNoteResponseFrom(note *model.ResearchNote) researchNoteResponse {
	return researchNoteResponse{
		ID:             note.ID.Hex(),
		Symbol:         note.Symbol,
		Title:          note.Title,
		Thesis:         note.Thesis,
		Risks:          note.Risks,
		Catalysts:      note.Catalysts,
		ReferenceLinks: note.ReferenceLinks,
	}
}
