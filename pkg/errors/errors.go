package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed gateway error with HTTP awareness.
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

// Is matches errors sharing the same code so cloned sentinels still compare equal.
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

// GenericMessage is shown when nothing more specific can be extracted from a failure.
const GenericMessage = "An unexpected error occurred. Please try again."

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrActionNotAllowed   = New("ACTION_NOT_ALLOWED", http.StatusConflict, "action is not allowed in the current status")
	ErrRequestInFlight    = New("REQUEST_IN_FLIGHT", http.StatusConflict, "another action is still in progress")
	ErrBackendRejected    = New("BACKEND_REJECTED", http.StatusBadRequest, "request rejected by backend")
	ErrBackendUnavailable = New("BACKEND_UNAVAILABLE", http.StatusBadGateway, GenericMessage)
	ErrRefreshFailed      = New("REFRESH_FAILED", http.StatusBadGateway, "action succeeded but the view could not be refreshed")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
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

// WithStatus returns a copy of the error carrying a different HTTP status.
func WithStatus(err *Error, status int) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if status > 0 {
		clone.Status = status
	}
	return &clone
}

// Message returns the user-facing message for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	appErr := FromError(err)
	if appErr.Code == ErrInternal.Code && appErr.Err != nil {
		return GenericMessage
	}
	if appErr.Message == "" {
		return GenericMessage
	}
	return appErr.Message
}
