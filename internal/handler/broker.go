package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/usecase"
)

// Broker CSV uploads are capped to keep a single request from holding the
// whole body in memory.
const maxCSVBytes = 5 << 20

// BrokerHandler serves broker connections, holdings, and CSV imports.
type BrokerHandler struct {
	brokerUC usecase.BrokerUsecase
	importUC usecase.CSVImportUsecase
	stockUC  usecase.StockUsecase
	logger   zerolog.Logger
}

// NewBrokerHandler creates a new instance of BrokerHandler.
func NewBrokerHandler(
	brokerUC usecase.BrokerUsecase,
	importUC usecase.CSVImportUsecase,
	stockUC usecase.StockUsecase,
	logger zerolog.Logger,
) *BrokerHandler {
	return &BrokerHandler{
		brokerUC: brokerUC,
		importUC: importUC,
		stockUC:  stockUC,
		logger:   logger,
	}
}

// Mount registers the broker routes on r. The static routes go first so chi
// does not treat "holdings" as a provider name.
func (h *BrokerHandler) Mount(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/holdings", h.holdings)
	r.Post("/import/csv", h.importPreview)
	r.Post("/import/csv/commit", h.importCommit)
	r.Post("/ibkr/sync", h.syncIBKR)
	r.Get("/{provider}", h.get)
}

func (h *BrokerHandler) list(w http.ResponseWriter, r *http.Request) {
	connections, err := h.brokerUC.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to list broker connections")
		return
	}

	resp := make([]brokerConnectionResponse, 0, len(connections))
	for _, connection := range connections {
		resp = append(resp, brokerConnectionResponseFrom(connection))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *BrokerHandler) get(w http.ResponseWriter, r *http.Request) {
	connection, err := h.brokerUC.Get(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "provider"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidProvider):
			writeError(w, http.StatusBadRequest, "invalid_provider", err.Error())
		case errors.Is(err, usecase.ErrBrokerNotFound):
			writeError(w, http.StatusNotFound, "broker_not_found", err.Error())
		default:
			writeInternalError(w, h.logger, err, "failed to get broker connection")
		}
		return
	}

	writeJSON(w, http.StatusOK, brokerConnectionResponseFrom(connection))
}

func (h *BrokerHandler) holdings(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.stockUC.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to list holdings")
		return
	}

	resp := make([]brokerHoldingResponse, 0, len(stocks))
	for _, stock := range stocks {
		resp = append(resp, brokerHoldingResponse{
			Symbol:   stock.Symbol,
			Quantity: stock.Shares,
			Currency: "USD",
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *BrokerHandler) syncIBKR(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, brokerSyncResponse{
		RunID:  uuid.NewString(),
		Status: "accepted",
	})
}

func (h *BrokerHandler) importPreview(w http.ResponseWriter, r *http.Request) {
	provider, csv, ok := h.readCSVUpload(w, r)
	if !ok {
		return
	}

	preview, err := h.importUC.Preview(csv, provider)
	if err != nil {
		h.writeImportError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, csvImportPreviewResponseFrom(preview))
}

func (h *BrokerHandler) importCommit(w http.ResponseWriter, r *http.Request) {
	provider, csv, ok := h.readCSVUpload(w, r)
	if !ok {
		return
	}

	commit, err := h.importUC.Commit(r.Context(), userIDFrom(r.Context()), csv, provider)
	if err != nil {
		h.writeImportError(w, err)
		return
	}

	inserted := make([]stockResponse, 0, len(commit.Inserted))
	for _, stock := range commit.Inserted {
		inserted = append(inserted, stockResponseFrom(stock))
	}
	updated := make([]stockResponse, 0, len(commit.Updated))
	for _, stock := range commit.Updated {
		updated = append(updated, stockResponseFrom(stock))
	}

	writeJSON(w, http.StatusOK, csvImportCommitResponse{
		Provider: commit.Provider,
		Inserted: inserted,
		Updated:  updated,
		Errors:   csvImportErrorsFrom(commit.Errors),
	})
}

func (h *BrokerHandler) writeImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidProvider):
		writeError(w, http.StatusBadRequest, "invalid_provider", err.Error())
	case errors.Is(err, usecase.ErrEmptyCSV):
		writeError(w, http.StatusBadRequest, "empty_csv", err.Error())
	case errors.Is(err, usecase.ErrMissingCSVHeader):
		writeError(w, http.StatusBadRequest, "missing_csv_header", err.Error())
	case errors.Is(err, usecase.ErrMissingSymbolColumn):
		writeError(w, http.StatusBadRequest, "missing_symbol_column", err.Error())
	default:
		writeInternalError(w, h.logger, err, "failed to process CSV import")
	}
}

// readCSVUpload extracts the provider name and the CSV text from either a
// multipart form or a raw body. The provider may arrive as a form field, a
// query parameter (provider or broker), or the X-Broker-Provider header.
func (h *BrokerHandler) readCSVUpload(w http.ResponseWriter, r *http.Request) (provider, csv string, ok bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(strings.ToLower(contentType), "multipart/") {
		if err := r.ParseMultipartForm(maxCSVBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_multipart", "invalid multipart body")
			return "", "", false
		}

		provider = h.providerFrom(r, r.FormValue("provider"))
		if provider == "" {
			writeError(w, http.StatusBadRequest, "missing_provider",
				"missing broker provider, use ?provider=... or multipart field provider")
			return "", "", false
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			file, _, err = r.FormFile("csv")
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing_file", "missing file field in multipart body")
			return "", "", false
		}
		defer file.Close()

		body, err := io.ReadAll(io.LimitReader(file, maxCSVBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_file", "failed to read CSV file")
			return "", "", false
		}

		return provider, string(body), true
	}

	provider = h.providerFrom(r, "")
	if provider == "" {
		writeError(w, http.StatusBadRequest, "missing_provider",
			"missing broker provider, use ?provider=... or multipart field provider")
		return "", "", false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCSVBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to read CSV body")
		return "", "", false
	}

	return provider, string(body), true
}

func (h *BrokerHandler) providerFrom(r *http.Request, formValue string) string {
	if formValue != "" {
		return formValue
	}
	if v := r.URL.Query().Get("provider"); v != "" {
		return v
	}
	if v := r.URL.Query().Get("broker"); v != "" {
		return v
	}
	return r.Header.Get("X-Broker-Provider")
}

func brokerConnectionResponseFrom(connection *model.BrokerConnection) brokerConnectionResponse {
	return brokerConnectionResponse{
		ID:       connection.ID.Hex(),
		Provider: connection.Provider,
		Status:   connection.Status,
	}
}

func csvImportPreviewResponseFrom(preview *usecase.CSVImportPreview) csvImportPreviewResponse {
	items := make([]csvImportItemResponse, 0, len(preview.Items))
	for _, item := range preview.Items {
		items = append(items, csvImportItemResponse{
			Line:     item.Line,
			Symbol:   item.Symbol,
			Shares:   item.Shares,
			BuyPrice: item.BuyPrice,
			BuyDate:  item.BuyDate,
			Notes:    item.Notes,
		})
	}

	return csvImportPreviewResponse{
		Provider: preview.Provider,
		Items:    items,
		Errors:   csvImportErrorsFrom(preview.Errors),
	}
}

func csvImportErrorsFrom(errs []usecase.CSVImportError) []csvImportErrorResponse {
	resp := make([]csvImportErrorResponse, 0, len(errs))
	for _, e := range errs {
		resp = append(resp, csvImportErrorResponse{Line: e.Line, Message: e.Message})
	}
	return resp
}
