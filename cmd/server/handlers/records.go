package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/carbontrail/backend/internal/emission"
)

// RecordHandler handles emission record operations.
type RecordHandler struct {
	svc *emission.Service
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(svc *emission.Service) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// Records handles GET and POST /api/emission-records.
func (h *RecordHandler) Records(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RecordHandler) list(w http.ResponseWriter) {
	records, err := h.svc.ListRecords()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RecordHandler) create(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ActivityDate   string   `json:"activity_date"`
		ActivityName   string   `json:"activity_name"`
		ActivityData   float64  `json:"activity_data"`
		Unit           string   `json:"unit"`
		OverrideCO2e   *float64 `json:"override_co2e"`
		OverrideReason string   `json:"override_reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Submit(emission.SubmitInput{
		ActivityDate:   request.ActivityDate,
		ActivityName:   request.ActivityName,
		ActivityData:   request.ActivityData,
		Unit:           request.Unit,
		OverrideCO2e:   request.OverrideCO2e,
		OverrideReason: request.OverrideReason,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":              result.RecordID,
		"calculated_co2e": result.CalculatedCO2e,
		"factor_used":     result.FactorUsed,
		"is_override":     result.IsOverride,
		"message":         "Record added successfully!",
	})
}

// AuditTrail handles GET /api/emission-records/audit?record_id=N.
func (h *RecordHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recordID, err := strconv.ParseInt(r.URL.Query().Get("record_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "record_id is required"})
		return
	}

	entries, err := h.svc.AuditTrail(recordID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record_id": recordID,
		"entries":   entries,
	})
}
