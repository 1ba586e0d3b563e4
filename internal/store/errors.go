package store

import (
	"fmt"
	"net/http"
)

// Error is a store error carrying the HTTP status it maps to.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same status code, so ErrNotFound.WithMessage(...)
// still satisfies errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}

	ErrUnavailable = &Error{
		Code:    http.StatusServiceUnavailable,
		Message: "store unavailable",
	}
)

// Entity-specific variants. They match their base sentinel with errors.Is.
var (
	ErrUserNotFound    = ErrNotFound.WithMessage("user not found")
	ErrEmailExists     = ErrAlreadyExists.WithMessage("email already in use")
	ErrUsernameTaken   = ErrAlreadyExists.WithMessage("username already taken")
	ErrRecipeNotFound  = ErrNotFound.WithMessage("recipe not found")
	ErrTagNotFound     = ErrNotFound.WithMessage("tag not found")
	ErrTagExists       = ErrAlreadyExists.WithMessage("tag already exists")
	ErrCommentNotFound = ErrNotFound.WithMessage("comment not found")
	ErrSessionNotFound = ErrNotFound.WithMessage("session not found")
	ErrProfileNotFound = ErrNotFound.WithMessage("profile not found")
)
