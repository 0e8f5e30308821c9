package common

import (
	"errors"
	"net/http"
)

// Error codes used across the relay. Validation and configuration problems
// are detected locally; the remaining codes classify upstream outcomes.
const (
	CodeValidationFailed         = "VALIDATION_FAILED"
	CodeServerMisconfigured      = "SERVER_MISCONFIGURED"
	CodeUpstreamUnavailable      = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamProtocol         = "UPSTREAM_PROTOCOL"
	CodePaymentRejected          = "PAYMENT_REJECTED"
	CodeMalformedUpstreamSuccess = "MALFORMED_UPSTREAM_SUCCESS"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithDetail attaches a key/value pair to the error details, allocating the
// map if needed. Returns the receiver for chaining.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e == nil {
		return nil
	}
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// RenderError writes err as the canonical error response. Unknown error
// values are reported as an opaque internal error so that raw upstream or
// transport failures never reach the client verbatim.
func RenderError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
