// Package errors defines the coded domain errors shared by services, API handlers and pages.
//
// Services return typed errors:
//
//	if recipe.AuthorID != userID {
//	    return errors.Forbidden("only the author can edit this recipe")
//	}
//
// Callers match by code with errors.Is against the sentinels:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"net/http"
)

// Is is errors.Is, re-exported so callers importing this package need only one errors import.
var Is = errors.Is

// Code is the machine-readable error code carried in the response envelope.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeTagCreation        Code = "TAG_CREATION" // A new tag could not be stored while saving a recipe
	CodeUnavailable        Code = "UNAVAILABLE"
)

var statusByCode = map[Code]int{
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeConflict:           http.StatusConflict,
	CodeTagCreation:        http.StatusConflict,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeTokenExpired:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeValidation:         http.StatusBadRequest,
	CodeUnavailable:        http.StatusServiceUnavailable,
}

// HTTPStatus returns the HTTP status for an error code. Unknown codes are 500.
func (c Code) HTTPStatus() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a domain error with a code, a user-facing message and optional details.
// Validation errors carry a map of field name to message in Details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrNotFound           = coded(CodeNotFound, "not found")
	ErrAlreadyExists      = coded(CodeAlreadyExists, "already exists")
	ErrUnauthorized       = coded(CodeUnauthorized, "unauthorized")
	ErrForbidden          = coded(CodeForbidden, "forbidden")
	ErrValidation         = coded(CodeValidation, "validation error")
	ErrInvalidCredentials = coded(CodeInvalidCredentials, "invalid credentials")
	ErrTokenExpired       = coded(CodeTokenExpired, "token expired")
	ErrTagCreation        = coded(CodeTagCreation, "tag creation failed")
	ErrUnavailable        = coded(CodeUnavailable, "service unavailable")
)

func coded(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func NotFound(msg string) *Error           { return coded(CodeNotFound, msg) }
func AlreadyExists(msg string) *Error      { return coded(CodeAlreadyExists, msg) }
func Unauthorized(msg string) *Error       { return coded(CodeUnauthorized, msg) }
func Forbidden(msg string) *Error          { return coded(CodeForbidden, msg) }
func Validation(msg string) *Error         { return coded(CodeValidation, msg) }
func InvalidCredentials(msg string) *Error { return coded(CodeInvalidCredentials, msg) }
func TokenExpired(msg string) *Error       { return coded(CodeTokenExpired, msg) }

// ValidationWithDetails creates a validation error with per-field messages.
func ValidationWithDetails(msg string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: fields}
}

// Wrap wraps err, which may be nil, under a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
