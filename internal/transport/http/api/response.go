package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"okr/internal/platform/openapi"
	"okr/internal/shared"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailError maps domain errors onto the HTTP error taxonomy. Upstream
// store failures are reported generically; the backend detail goes to
// the log only.
func FailError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, shared.ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", requestID)
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case openapi.IsAPIError(err):
		slog.Error("upstream store error", "err", err.Error(), "requestId", requestID)
		Fail(w, http.StatusBadGateway, "upstream_unavailable", "upstream service unavailable", requestID)
	default:
		slog.Error("unhandled error", "err", err.Error(), "requestId", requestID)
		Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
