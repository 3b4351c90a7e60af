package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request-level failure. Every handler failure collapses to
// exactly one kind before it reaches the response writer.
type Kind int

const (
	// KindInternal covers unexpected store or codec failures.
	KindInternal Kind = iota
	// KindUnauthenticated covers missing or invalid credentials.
	KindUnauthenticated
	// KindForbidden covers a valid identity acting on a resource it does not own.
	KindForbidden
	// KindNotFound covers identifiers that do not resolve to a record.
	KindNotFound
	// KindBadRequest covers missing or malformed input fields.
	KindBadRequest
	// KindConflict covers uniqueness violations such as duplicate registration.
	KindConflict
)

// Error carries a failure kind plus a message safe to return to the caller.
type Error struct {
	Kind    Kind
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

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an underlying cause to a kinded error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for err. Internal failures are
// masked so store and codec details never leak.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps a kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
