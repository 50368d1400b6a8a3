package handlers

import (
	"net/http"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/service"
)

// GoldHandler serves the gold price dashboard.
type GoldHandler struct {
	priceService *service.PriceService
}

// NewGoldHandler creates a new GoldHandler
func NewGoldHandler(priceService *service.PriceService) *GoldHandler {
	return &GoldHandler{
		priceService: priceService,
	}
}

// Dashboard handles GET requests for the dashboard view.
// The record is refreshed from the source when the cache is stale.
//
// Endpoint: GET /api/gold?page=N
// Response: 200 OK with model.Dashboard
// Error: 400 for an invalid page, 422 when the history is too short,
// 502/503 when the source fails and nothing is cached
func (h *GoldHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	page, err := request.ParsePage(r.URL.Query().Get("page"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	view, err := h.priceService.Dashboard(r.Context(), page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

// ChartData handles GET requests for the chart of the trailing window.
//
// Endpoint: GET /api/gold/chart-data
// Response: 200 OK with model.ChartData
func (h *GoldHandler) ChartData(w http.ResponseWriter, r *http.Request) {
	data, err := h.priceService.ChartData(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, data)
}
