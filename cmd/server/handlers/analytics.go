package handlers

import (
	"net/http"

	"github.com/carbontrail/backend/internal/analytics"
)

// AnalyticsHandler handles aggregate reporting endpoints.
type AnalyticsHandler struct {
	svc *analytics.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// YoYEmissions handles GET /api/analytics/yoy-emissions.
func (h *AnalyticsHandler) YoYEmissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := h.svc.YearOverYear(yearParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// YoYEmissionsDebug handles GET /api/analytics/yoy-emissions-debug, returning
// every year in the ledger unfiltered.
func (h *AnalyticsHandler) YoYEmissionsDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rows, err := h.svc.YearOverYearAllYears()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":    rows,
		"message": "All years and scopes from database",
	})
}

// Intensity handles GET /api/analytics/emission-intensity.
func (h *AnalyticsHandler) Intensity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := h.svc.Intensity(yearParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Hotspots handles GET /api/analytics/emission-hotspots.
func (h *AnalyticsHandler) Hotspots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := h.svc.Hotspots(yearParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MonthlyTrends handles GET /api/analytics/monthly-trends.
func (h *AnalyticsHandler) MonthlyTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := h.svc.MonthlyTrends(yearParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// QuickCheck handles GET /api/debug/quick-check.
func (h *AnalyticsHandler) QuickCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	report, err := h.svc.QuickCheck()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
