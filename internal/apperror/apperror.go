package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error kinds the API distinguishes.
// Handlers map these to HTTP status codes with errors.Is; anything
// else becomes a generic 500.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage error")
	ErrUpstream     = errors.New("upstream error")
)

type AppError struct {
	Err     error  // sentinel identifying the error kind
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for a missing, expired, or malformed
// credential. HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Storage wraps a database failure. The driver error stays on the chain
// for logging; clients only see which operation failed.
func Storage(op string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s: %w", ErrStorage, op, err),
		Message: fmt.Sprintf("storage operation failed: %s", op),
	}
}

// Upstream wraps a third-party identity provider failure. HTTP handlers
// map this to 502.
func Upstream(provider string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s: %w", ErrUpstream, provider, err),
		Message: fmt.Sprintf("%s is unavailable", provider),
	}
}
