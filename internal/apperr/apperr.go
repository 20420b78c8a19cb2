// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Type classifies an application error
type Type string

const (
	TypeValidation     Type = "validation"
	TypeAuthentication Type = "authentication"
	TypeForbidden      Type = "forbidden"
	TypeNotFound       Type = "not_found"
	TypeInternal       Type = "internal"
)

// Error is a structured application error. Details are merged into the
// JSON error body next to the message.
type Error struct {
	Type       Type
	Message    string
	StatusCode int
	Internal   error
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// With returns a copy carrying an extra detail field
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// Validation creates a 400 error
func Validation(message string) *Error {
	return &Error{Type: TypeValidation, Message: message, StatusCode: http.StatusBadRequest}
}

// Authentication creates a 401 error
func Authentication(message string) *Error {
	return &Error{Type: TypeAuthentication, Message: message, StatusCode: http.StatusUnauthorized}
}

// Forbidden creates a 403 error. Used for locked sections, expired
// countdowns and exhausted attempts.
func Forbidden(message string) *Error {
	return &Error{Type: TypeForbidden, Message: message, StatusCode: http.StatusForbidden}
}

// NotFound creates a 404 error
func NotFound(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message, StatusCode: http.StatusNotFound}
}

// Internal wraps an unexpected failure. The message is what clients see.
func Internal(message string, err error) *Error {
	return &Error{Type: TypeInternal, Message: message, StatusCode: http.StatusInternalServerError, Internal: err}
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an *Error of the given type
func IsType(err error, t Type) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}
