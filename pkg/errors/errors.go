package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so cloned sentinels compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidFile         = New("INVALID_FILE", http.StatusBadRequest, "Please upload a valid CSV file.")
	ErrEmptyBatch          = New("EMPTY_BATCH", http.StatusBadRequest, "The CSV file appears to be empty.")
	ErrParseFailed         = New("PARSE_FAILED", http.StatusBadRequest, "Error parsing CSV file")
	ErrImportInFlight      = New("IMPORT_IN_FLIGHT", http.StatusConflict, "an import is already being submitted")
	ErrNoBatch             = New("NO_BATCH", http.StatusBadRequest, "No data to upload")
	ErrAlreadyVoted        = New("ALREADY_VOTED", http.StatusConflict, "you have already voted in this poll")
	ErrUpstream            = New("UPSTREAM_ERROR", http.StatusBadGateway, "request failed")
	ErrUpstreamUnavailable = New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "news service unavailable")
	ErrStorageMiss         = New("STORAGE_MISS", http.StatusNotFound, "storage entry not found")
	ErrSessionPending      = New("SESSION_PENDING", http.StatusServiceUnavailable, "session is still loading")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// MessageOr returns the message carried by err, or fallback when err holds none.
func MessageOr(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
