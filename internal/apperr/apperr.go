// Package apperr defines the error kinds shared by the auth and ledger
// packages and their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrAuthentication   = errors.New("authentication error")
	ErrAuthorization    = errors.New("authorization error")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrIntegrity        = errors.New("integrity error")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error tags a cause with one of the kinds above. Reason is safe to show to
// clients; Err is not.
type Error struct {
	Kind   error
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func New(kind error, reason string) error {
	return &Error{Kind: kind, Reason: reason}
}

func Wrap(kind error, reason string, err error) error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func Validation(reason string) error {
	return New(ErrValidation, reason)
}

// Status maps err onto an HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for err. Server-side failures get
// a fixed message so connection strings and driver detail never leak.
func Message(err error) string {
	status := Status(err)
	switch status {
	case http.StatusInternalServerError:
		return "server error"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	}

	var e *Error
	if errors.As(err, &e) && e.Reason != "" {
		return e.Reason
	}
	return http.StatusText(status)
}
