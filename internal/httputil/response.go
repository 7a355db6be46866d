package httputil

import (
	"encoding/json"
	"net/http"
)

type ErrorBody struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// WriteErrorCode is for endpoints whose clients key off a stable error code
// rather than the human-readable message.
func WriteErrorCode(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Code: code, Error: message})
}
