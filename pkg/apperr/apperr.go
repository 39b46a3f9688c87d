package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain failure tagged with the HTTP status it maps to. The
// application layer returns these; only the transport layer turns them into
// wire responses.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(status int, message string, cause ...error) *Error {
	e := &Error{Status: status, Message: message}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

// BadRequest tags missing or invalid input.
func BadRequest(message string, cause ...error) *Error {
	return newError(http.StatusBadRequest, message, cause...)
}

// Conflict tags duplicate username/email registration.
func Conflict(message string, cause ...error) *Error {
	return newError(http.StatusConflict, message, cause...)
}

// NotFound tags an absent user or channel.
func NotFound(message string, cause ...error) *Error {
	return newError(http.StatusNotFound, message, cause...)
}

// Unauthorized tags credential and token failures. Token failures during
// refresh must all use the same message so callers cannot distinguish
// expiry from revocation.
func Unauthorized(message string, cause ...error) *Error {
	return newError(http.StatusUnauthorized, message, cause...)
}

// Internal tags hashing and persistence failures.
func Internal(message string, cause ...error) *Error {
	return newError(http.StatusInternalServerError, message, cause...)
}

// From extracts the tagged error from err, wrapping unknown errors as
// Internal so the transport always has a status to send.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal server error", err)
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}
