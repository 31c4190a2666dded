// Package respond provides uniform JSON response helpers for handlers.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ErrorBody is the uniform error payload.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error writes an error payload with the given status and code.
func Error(w http.ResponseWriter, status int, code string, err error) {
	JSON(w, status, ErrorBody{Error: err.Error(), Code: code})
}
