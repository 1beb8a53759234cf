// Package errors defines the service error taxonomy shared by domain services
// and the HTTP layer. Every guard failure surfaces as a ServiceError carrying a
// stable code and an HTTP status classification.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeForbidden    Code = "FORBIDDEN"
	CodeConflict     Code = "CONFLICT"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL"
)

// ServiceError is a classified error with an HTTP status.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/As.
func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a key/value detail and returns the error for chaining.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code Code, status int, message string, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status, cause: cause}
}

// NotFound reports an absent entity.
func NotFound(format string, args ...interface{}) *ServiceError {
	return newError(CodeNotFound, http.StatusNotFound, fmt.Sprintf(format, args...), nil)
}

// Forbidden reports a failed role or ownership guard.
func Forbidden(format string, args ...interface{}) *ServiceError {
	return newError(CodeForbidden, http.StatusForbidden, fmt.Sprintf(format, args...), nil)
}

// Conflict reports a resource conflict, such as a duplicate email.
func Conflict(format string, args ...interface{}) *ServiceError {
	return newError(CodeConflict, http.StatusConflict, fmt.Sprintf(format, args...), nil)
}

// StateConflict reports a domain-state conflict (date overlap, transition from
// the wrong status, already settled). These surface as 400: the request is
// well-formed but impossible in the current state.
func StateConflict(format string, args ...interface{}) *ServiceError {
	return newError(CodeConflict, http.StatusBadRequest, fmt.Sprintf(format, args...), nil)
}

// Validation reports malformed or out-of-range input.
func Validation(format string, args ...interface{}) *ServiceError {
	return newError(CodeValidation, http.StatusBadRequest, fmt.Sprintf(format, args...), nil)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string) *ServiceError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message, nil)
}

// InvalidToken reports a credential that failed verification.
func InvalidToken(cause error) *ServiceError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, "invalid or expired token", cause)
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *ServiceError {
	return newError(CodeInternal, http.StatusInternalServerError, message, cause)
}

// GetServiceError extracts a *ServiceError from an error chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == code
}
