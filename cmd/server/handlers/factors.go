package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/carbontrail/backend/internal/emission"
)

// FactorHandler handles emission factor operations.
type FactorHandler struct {
	svc *emission.Service
}

// NewFactorHandler creates a new FactorHandler.
func NewFactorHandler(svc *emission.Service) *FactorHandler {
	return &FactorHandler{svc: svc}
}

// Factors handles GET and POST /api/emission-factors.
func (h *FactorHandler) Factors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *FactorHandler) list(w http.ResponseWriter) {
	factors, err := h.svc.ListFactors()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, factors)
}

func (h *FactorHandler) create(w http.ResponseWriter, r *http.Request) {
	var input emission.FactorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	factor, err := h.svc.AddFactor(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, factor)
}

// BulkCreate handles POST /api/emission-factors/bulk.
func (h *FactorHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Factors []emission.FactorInput `json:"factors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Factors == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Expected array of factors"})
		return
	}

	result := h.svc.BulkAddFactors(request.Factors)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"batch_id": result.BatchID,
		"inserted": result.Inserted,
		"errors":   result.Errors,
		"message":  fmt.Sprintf("Successfully inserted %d emission factors", result.Inserted),
	})
}
