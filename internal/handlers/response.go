package handlers

import (
	"encoding/json"
	"net/http"
)

// Envelope - единый формат ответа API: {success, data, error}
type Envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

func responseWithJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Envelope{
		Success: true,
		Data:    data,
	})
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Envelope{
		Success: false,
		Error:   &message,
	})
}
