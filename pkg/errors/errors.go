package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrSlotUnavailable, ErrInvalidTransition:
		return http.StatusConflict
	case ErrInvalidWorkingHours:
		return http.StatusUnprocessableEntity
	case ErrRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrSlotUnavailable
	ErrInvalidWorkingHours
	ErrInvalidTransition
	ErrRateLimited
)

var codeNames = map[ErrorCode]string{
	ErrNotFound:            "NOT_FOUND",
	ErrBadRequest:          "BAD_REQUEST",
	ErrUnauthorized:        "UNAUTHORIZED",
	ErrForbidden:           "FORBIDDEN",
	ErrInternal:            "INTERNAL",
	ErrValidation:          "VALIDATION_ERROR",
	ErrSlotUnavailable:     "SLOT_UNAVAILABLE",
	ErrInvalidWorkingHours: "INVALID_WORKING_HOURS",
	ErrInvalidTransition:   "INVALID_TRANSITION",
	ErrRateLimited:         "RATE_LIMITED",
}

// String returns the wire name of the code, e.g. SLOT_UNAVAILABLE.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func NewValidation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

// NewSlotUnavailable reports that the requested interval is no longer free,
// either because another booking won the race or the schedule changed.
func NewSlotUnavailable(message string) *AppError {
	if message == "" {
		message = "slot no longer available"
	}
	return &AppError{
		Code:    ErrSlotUnavailable,
		Message: message,
	}
}

func NewInvalidWorkingHours(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidWorkingHours,
		Message: message,
		Err:     err,
	}
}

func NewInvalidTransition(from, action string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("cannot %s an appointment in status %s", action, from),
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code, true
	}
	return 0, false
}

func hasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

func IsNotFound(err error) bool            { return hasCode(err, ErrNotFound) }
func IsValidation(err error) bool          { return hasCode(err, ErrValidation) }
func IsSlotUnavailable(err error) bool     { return hasCode(err, ErrSlotUnavailable) }
func IsInvalidWorkingHours(err error) bool { return hasCode(err, ErrInvalidWorkingHours) }
func IsInvalidTransition(err error) bool   { return hasCode(err, ErrInvalidTransition) }
