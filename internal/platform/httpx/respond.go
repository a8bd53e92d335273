// Package httpx provides JSON response helpers for the mock backend.
package httpx

import (
	"encoding/json"
	"net/http"
)

// errorBody is the error shape the console's transport decodes.
type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error sends a JSON error with a displayable message.
func Error(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	JSON(w, status, errorBody{Message: message, Status: status})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
