package utils

import (
	"encoding/json"
	"net/http"

	"bookstore-be/internal/logger"

	"go.uber.org/zap"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromCtx(r.Context()).Error("failed to encode response", zap.Error(err))
	}
}

func WriteSuccess(w http.ResponseWriter, r *http.Request, code int, data any, message string) {
	WriteJSON(w, r, code, Response{Success: true, Data: data, Message: message})
}

func WriteJSONError(w http.ResponseWriter, r *http.Request, code int, message string, details any) {
	WriteJSON(w, r, code, Response{Success: false, Error: message, Details: details})
}
