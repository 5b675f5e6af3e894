// Package apperr defines the tagged error type returned at service boundaries.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP status mapping.
type Kind int

const (
	// KindValidation indicates invalid caller input (HTTP 400).
	KindValidation Kind = iota
	// KindAuth indicates a missing or invalid credential (HTTP 401).
	KindAuth
	// KindNotFound indicates the requested row is absent or not owned
	// by the caller (HTTP 404).
	KindNotFound
	// KindUpstream indicates a failure in the store or a third-party
	// service (HTTP 500 unless a status is carried explicitly).
	KindUpstream
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream_failure"
	default:
		return "unknown"
	}
}

// Error is the single error shape crossing handler boundaries.
// Message is safe to show to callers; Err carries the internal cause.
type Error struct {
	Kind    Kind
	Message string
	// Status overrides the kind's default HTTP status when non-zero.
	// Used to propagate an upstream status verbatim.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the internal cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code this error maps to.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Validation returns a caller-input error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Auth returns an authentication error.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// NotFound returns a missing-row error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Upstream wraps a store or third-party failure behind a generic message.
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// UpstreamStatus wraps an upstream failure whose HTTP status should be
// propagated verbatim to the caller.
func UpstreamStatus(status int, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Status: status, Err: err}
}

// From extracts an *Error from err, wrapping unknown errors as upstream
// failures with the given fallback message.
func From(err error, fallback string) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Upstream(fallback, err)
}
