// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer. Every error surfaced to a caller carries a Kind that maps to an
// HTTP status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyContent      = errors.New("empty content")
	ErrStorage           = errors.New("storage error")
	ErrProcessing        = errors.New("processing error")
)

// Error is an application error with a client-facing message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Is lets UnsupportedFormat and EmptyContent also match ErrInvalidInput.
func (e *Error) Is(target error) bool {
	if target == ErrInvalidInput {
		return e.Kind == ErrUnsupportedFormat || e.Kind == ErrEmptyContent
	}
	return false
}

func newError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, fmt.Sprintf(format, args...), nil)
}

func InvalidInput(format string, args ...any) *Error {
	return newError(ErrInvalidInput, fmt.Sprintf(format, args...), nil)
}

func UnsupportedFormat(format string, args ...any) *Error {
	return newError(ErrUnsupportedFormat, fmt.Sprintf(format, args...), nil)
}

func EmptyContent(format string, args ...any) *Error {
	return newError(ErrEmptyContent, fmt.Sprintf(format, args...), nil)
}

// Storage wraps a filesystem or object-store failure.
func Storage(message string, err error) *Error {
	return newError(ErrStorage, message, err)
}

// Processing wraps an extraction or LLM-call failure.
func Processing(message string, err error) *Error {
	return newError(ErrProcessing, message, err)
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrEmptyContent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message. Unclassified errors are not
// echoed back to the client.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return "internal server error"
}
