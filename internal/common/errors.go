package common

import (
	"errors"
	"net/http"
)

// Error codes used across the checkout flow. Validation failures are
// terminal at the boundary; upstream failures are reported to the caller
// without automatic retry since intent creation is not idempotent.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeUpstream   = "UPSTREAM_ERROR"
	CodeInternal   = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
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

// NewValidationError flags malformed or out-of-policy input.
func NewValidationError(message string, err error) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest, Err: err}
}

// NewUpstreamError flags a failed call to the payment processor.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Code: CodeUpstream, Message: message, HTTPStatus: http.StatusBadGateway, Err: err}
}

// RenderError writes err using the canonical error shape, mapping unknown
// errors to an opaque 500 so internals never leak to clients.
func RenderError(w http.ResponseWriter, err error) {
	var app *AppError
	if errors.As(err, &app) {
		JSONError(w, app.HTTPStatus, app.Code, app.Message, app.Details)
		return
	}
	JSONError(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
}
