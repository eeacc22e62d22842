package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose
// internal details to clients.
const ErrMessageInternal = "Server error"

// Every response uses the envelope {"status": "success"|"error", ...}.

// JSONError sends an error envelope with the given message.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message})
}

// JSONValidationError sends a 400 error envelope with field-level details.
func JSONValidationError(w http.ResponseWriter, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "error",
		"message": "Validation failed",
		"errors":  fields,
	})
}

// JSONSuccess sends a success envelope merged with the given fields.
func JSONSuccess(w http.ResponseWriter, status int, fields map[string]interface{}) {
	out := map[string]interface{}{"status": "success"}
	for k, v := range fields {
		out[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(out)
}
