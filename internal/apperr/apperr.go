// Package apperr provides coded domain errors for tagshelf.
//
// Services return typed errors and callers branch with errors.Is:
//
//	if errors.Is(err, apperr.ErrNotFound) {
//	    ...
//	}
//
// or switch on the code directly:
//
//	var e *apperr.Error
//	if errors.As(err, &e) {
//	    switch e.Code {
//	    case apperr.CodeValidation:
//	    }
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is = errors.Is
	As = errors.As
)

// Code is a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION"
	CodeConflict      Code = "CONFLICT"
	CodeStorageRead   Code = "STORAGE_READ"
	CodeStorageWrite  Code = "STORAGE_WRITE"
	CodeEnrichment    Code = "ENRICHMENT"
	CodeUndoExpired   Code = "UNDO_EXPIRED"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUndoExpired:
		return http.StatusGone
	case CodeEnrichment:
		return http.StatusBadGateway
	case CodeStorageRead, CodeStorageWrite:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrStorageRead   = &Error{Code: CodeStorageRead, Message: "storage read failed"}
	ErrStorageWrite  = &Error{Code: CodeStorageWrite, Message: "storage write failed"}
	ErrEnrichment    = &Error{Code: CodeEnrichment, Message: "metadata enrichment failed"}
	ErrUndoExpired   = &Error{Code: CodeUndoExpired, Message: "undo window expired"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExistsf creates an already exists error with a formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with per-field details.
func ValidationWithDetails(msg string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// StorageRead wraps a persistence read failure.
func StorageRead(msg string, cause error) *Error {
	return &Error{Code: CodeStorageRead, Message: msg, cause: cause}
}

// StorageWrite wraps a persistence write failure.
func StorageWrite(msg string, cause error) *Error {
	return &Error{Code: CodeStorageWrite, Message: msg, cause: cause}
}

// Enrichment wraps a metadata lookup failure.
func Enrichment(msg string, cause error) *Error {
	return &Error{Code: CodeEnrichment, Message: msg, cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// CodeOf extracts the code of err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
