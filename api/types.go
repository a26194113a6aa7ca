package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"hydrospark/internal/errors"
	"hydrospark/internal/logging"
)

// calculateBillRequest prices a raw quantity without touching storage
type calculateBillRequest struct {
	UsageCCF float64 `json:"usage_ccf"`
	Month    int     `json:"month"`
}

// generateBillRequest produces and persists a bill for a stored period
type generateBillRequest struct {
	CustomerID int64 `json:"customer_id"`
	Year       int   `json:"year"`
	Month      int   `json:"month"`
}

// createCustomerRequest registers a new billed account
type createCustomerRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	LocationID   int64  `json:"location_id"`
	CustomerType string `json:"customer_type"`
	CycleNumber  int    `json:"cycle_number"`
}

// addUsageRequest records one metered reading
type addUsageRequest struct {
	Date     string  `json:"date"`
	UsageCCF float64 `json:"usage_ccf"`
}

// errorResponse is the uniform error envelope
type errorResponse struct {
	Error   string                 `json:"error"`
	Type    errors.Type            `json:"type"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps domain error types onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error(), Type: errors.TypeInternal}

	if e, ok := err.(*errors.Error); ok {
		resp.Type = e.Type
		resp.Error = e.Message
		resp.Context = e.Context
		switch e.Type {
		case errors.TypeInput:
			status = http.StatusBadRequest
		case errors.TypeNotFound:
			status = http.StatusNotFound
		case errors.TypeConflict:
			status = http.StatusConflict
		case errors.TypeInsufficientData:
			status = http.StatusUnprocessableEntity
		}
	}

	if status >= 500 {
		logging.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, resp)
}
