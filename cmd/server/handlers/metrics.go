package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/carbontrail/backend/internal/analytics"
	"github.com/carbontrail/backend/internal/db"
	"github.com/carbontrail/backend/internal/models"
)

// MetricHandler handles business metric operations.
type MetricHandler struct {
	repo      db.MetricRepository
	analytics *analytics.Service
}

// NewMetricHandler creates a new MetricHandler.
func NewMetricHandler(repo db.MetricRepository, analyticsSvc *analytics.Service) *MetricHandler {
	return &MetricHandler{repo: repo, analytics: analyticsSvc}
}

// Metrics handles GET and POST /api/business-metrics.
func (h *MetricHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MetricHandler) list(w http.ResponseWriter) {
	metrics, err := h.repo.ListBusinessMetrics()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (h *MetricHandler) create(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Date       string  `json:"date"`
		MetricName string  `json:"metric_name"`
		Value      float64 `json:"value"`
		Unit       string  `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.Date == "" || request.MetricName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date and metric_name are required"})
		return
	}

	metric := &models.BusinessMetric{
		Date:       request.Date,
		MetricName: request.MetricName,
		Value:      request.Value,
		Unit:       request.Unit,
	}
	if err := h.repo.CreateBusinessMetric(metric); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      metric.ID,
		"message": "Business metric added successfully!",
	})
}

// Summary handles GET /api/business-metrics/summary.
func (h *MetricHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := h.analytics.MetricsSummary(yearParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
