package http

import (
	"encoding/json"
	"net/http"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/logger"
)

// Envelope is the single response shape for every endpoint. Code maps
// 1:1 onto the error taxonomy; "OK" carries data, everything else a
// message.
type Envelope struct {
	Code    string `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Code: "OK", Data: data})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict, domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInternal {
		logger.Error("internal error", "error", err)
		msg = "internal error"
	}
	writeJSON(w, statusFor(kind), Envelope{Code: string(kind), Message: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed request body"))
		return false
	}
	return true
}

// pageData is the envelope payload for list endpoints.
type pageData struct {
	Items any   `json:"items"`
	Total int32 `json:"total"`
	Page  int32 `json:"page"`
}
