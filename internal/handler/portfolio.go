package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/usecase"
)

// PortfolioHandler serves aggregate portfolio views plus the transaction and
// lot listings, which stay empty until trade-level bookkeeping exists.
type PortfolioHandler struct {
	portfolioUC usecase.PortfolioUsecase
	logger      zerolog.Logger
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
func NewPortfolioHandler(portfolioUC usecase.PortfolioUsecase, logger zerolog.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolioUC: portfolioUC, logger: logger}
}

// Mount registers the portfolio routes on r.
func (h *PortfolioHandler) Mount(r chi.Router) {
	r.Get("/portfolio/summary", h.summary)
	r.Get("/portfolio/performance", h.performance)
	r.Get("/transactions", h.transactions)
	r.Get("/lots", h.lots)
	r.Get("/pnl", h.pnl)
}

func (h *PortfolioHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioUC.Summary(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to build portfolio summary")
		return
	}

	allocation := make([]allocationItemResponse, 0, len(summary.Allocation))
	for _, item := range summary.Allocation {
		allocation = append(allocation, allocationItemResponse{
			Symbol:   item.Symbol,
			Value:    item.Value,
			Currency: item.Currency,
		})
	}

	writeJSON(w, http.StatusOK, portfolioSummaryResponse{
		BaseCurrency:  summary.BaseCurrency,
		TotalValue:    summary.TotalValue,
		TotalCost:     summary.TotalCost,
		UnrealizedPnl: summary.UnrealizedPnl,
		RealizedPnl:   summary.RealizedPnl,
		Allocation:    allocation,
	})
}

func (h *PortfolioHandler) performance(w http.ResponseWriter, r *http.Request) {
	performance, err := h.portfolioUC.Performance(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to build portfolio performance")
		return
	}

	points := make([]performancePointResponse, 0, len(performance.Points))
	for _, point := range performance.Points {
		points = append(points, performancePointResponse{Date: point.Date, Value: point.Value})
	}

	writeJSON(w, http.StatusOK, portfolioPerformanceResponse{
		BaseCurrency: performance.BaseCurrency,
		Points:       points,
	})
}

func (h *PortfolioHandler) pnl(w http.ResponseWriter, r *http.Request) {
	pnl, err := h.portfolioUC.Pnl(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to build pnl breakdown")
		return
	}

	items := make([]pnlBySymbolResponse, 0, len(pnl.Items))
	for _, item := range pnl.Items {
		items = append(items, pnlBySymbolResponse{
			Symbol:        item.Symbol,
			Currency:      item.Currency,
			RealizedPnl:   item.RealizedPnl,
			UnrealizedPnl: item.UnrealizedPnl,
		})
	}

	writeJSON(w, http.StatusOK, pnlResponse{BaseCurrency: pnl.BaseCurrency, Items: items})
}

func (h *PortfolioHandler) transactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []transactionResponse{})
}

func (h *PortfolioHandler) lots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []lotResponse{})
}
