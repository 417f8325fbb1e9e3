package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an application error
type Code int

const (
	CodeValidation Code = iota + 1000
	CodeUnauthorized
	CodeForbidden
	CodeNotFound
	CodeConflict
	CodeInvalidSchedule
	CodeInvalidTransition
	CodeInternal
)

// Error is the typed result every core failure is reported as. Store-level
// connectivity failures are wrapped as CodeInternal and surfaced unmodified.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status. Consumed by the
// error-handling middleware.
func (e *Error) StatusCode() int {
	switch e.Code {
	case CodeValidation, CodeInvalidSchedule, CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, err error) *Error {
	return &Error{Code: CodeValidation, Message: message, Err: err}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// Forbidden always carries the denial reason produced by the authorization
// engine or a lifecycle guard.
func Forbidden(reason string) *Error {
	return &Error{Code: CodeForbidden, Message: reason}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Conflict(key string) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf("%s already registered", key)}
}

func InvalidSchedule(message string) *Error {
	return &Error{Code: CodeInvalidSchedule, Message: message}
}

// InvalidTransition carries the current and requested appointment states.
func InvalidTransition(current, requested string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("invalid transition from %s to %s", current, requested),
	}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal server error", Err: err}
}

// CodeOf returns the code of err, or CodeInternal for untyped errors.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
