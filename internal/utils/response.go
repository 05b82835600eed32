package utils

import (
	"encoding/json"
	"net/http"

	"joblink/api/internal/models"
)

// JSON writes a JSON response with status code
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// OK writes a success envelope with optional data.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, models.Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes a failure envelope with a machine-readable code.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, models.Envelope{
		Success: false,
		Message: message,
		Code:    code,
	})
}
