package api

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{
		Success: statusCode < 400,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, statusCode int, err string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   err,
	})
}

// writeValidationErrors surfaces the full aggregated message list so the
// UI can render each violation inline.
func writeValidationErrors(w http.ResponseWriter, messages []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   "validation failed",
		Errors:  messages,
	})
}

func writeWarning(w http.ResponseWriter, warning string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(envelope{
		Success: true,
		Warning: warning,
	})
}
