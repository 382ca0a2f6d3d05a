package server

import (
	"encoding/json"
	"net/http"
)

// SuccessResponse is the envelope for all 2xx API responses.
type SuccessResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	Data             any    `json:"data,omitempty"`
}

// ErrorResponse is the envelope for all non-2xx API responses.
type ErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// HealthData reports service liveness.
type HealthData struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Healthy bool   `json:"healthy"`
}

// ClearCacheData reports how many cached results were dropped.
type ClearCacheData struct {
	EntriesCleared int `json:"entries_cleared"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, elapsedMs int64, data any) {
	writeJSON(w, status, SuccessResponse{
		Status:           "success",
		Message:          message,
		ProcessingTimeMs: elapsedMs,
		Data:             data,
	})
}

func writeError(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, ErrorResponse{
		Status:  "error",
		Message: message,
		Errors:  errs,
	})
}
