// Package handler contains the HTTP layer: request decoding, response
// encoding, and the mapping from domain errors to status codes. Handlers
// hold no business rules; they translate between the wire and the
// service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sizem-re/placelist/internal/apperror"
)

// ErrorResponse is the error shape returned by every API endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be written before the body; encoding failures after that
// can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends the standard
// error body. The service layer never sees this mapping.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"
		message := appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrUpstream):
			status = http.StatusBadGateway
			errorType = "upstream_error"
			message = "identity provider request failed"
		case errors.Is(err, apperror.ErrStorage):
			errorType = "storage_error"
			message = "a storage error occurred"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: message,
			Field:   appErr.Field,
		})
		return
	}

	if errors.Is(err, apperror.ErrStorage) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_error",
			Message: "a storage error occurred",
		})
		return
	}

	// Unknown error. Never expose internals to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// decodeJSON decodes the request body into dst and reports a validation
// error to the client on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return false
	}
	return true
}
