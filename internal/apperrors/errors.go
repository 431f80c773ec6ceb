package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeDuplicateEmail     ErrorCode = "DUPLICATE_EMAIL"
	CodeInvalidState       ErrorCode = "INVALID_STATE"
	CodeInvalidDestination ErrorCode = "INVALID_DESTINATION"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
	CodeHashingError       ErrorCode = "HASHING_ERROR"
	CodeDispatchError      ErrorCode = "DISPATCH_ERROR"
	CodeProviderError      ErrorCode = "PROVIDER_ERROR"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// AppError is the error type every service returns to the HTTP layer.
// Message is safe to show to the caller; Err carries the underlying cause
// and is only ever logged.
type AppError struct {
	Code     ErrorCode
	Message  string
	HTTPCode int
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsServerError reports whether the error should be hidden from the caller.
func (e *AppError) IsServerError() bool {
	return e.HTTPCode >= http.StatusInternalServerError
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode, Err: err}
}

// Sentinels for errors.Is comparisons.
var (
	ErrBadRequest         = New(CodeBadRequest, "Bad request", http.StatusBadRequest)
	ErrNotFound           = New(CodeNotFound, "Not found", http.StatusNotFound)
	ErrDuplicateEmail     = New(CodeDuplicateEmail, "Email have already been used", http.StatusConflict)
	ErrInvalidState       = New(CodeInvalidState, "Invalid state", http.StatusBadRequest)
	ErrInvalidDestination = New(CodeInvalidDestination, `Invalid "to" field. It should be either a valid email address or phone number.`, http.StatusBadRequest)
	ErrUnauthorized       = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = New(CodeForbidden, "Permission denied", http.StatusForbidden)
	ErrHashing            = New(CodeHashingError, "Failed to hash password", http.StatusInternalServerError)
	ErrDispatch           = New(CodeDispatchError, "Error sending message", http.StatusInternalServerError)
	ErrProvider           = New(CodeProviderError, "Messaging provider error", http.StatusInternalServerError)
	ErrInternal           = New(CodeInternalError, "Internal server error", http.StatusInternalServerError)
)

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func DuplicateEmail() *AppError {
	return New(CodeDuplicateEmail, ErrDuplicateEmail.Message, http.StatusConflict)
}

func InvalidState(message string) *AppError {
	return New(CodeInvalidState, message, http.StatusBadRequest)
}

func InvalidDestination() *AppError {
	return New(CodeInvalidDestination, ErrInvalidDestination.Message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func TooManyRequests() *AppError {
	return New(CodeTooManyRequests, "Rate limit exceeded", http.StatusTooManyRequests)
}

func Hashing(err error) *AppError {
	return Wrap(err, CodeHashingError, ErrHashing.Message, http.StatusInternalServerError)
}

func Dispatch(err error) *AppError {
	return Wrap(err, CodeDispatchError, ErrDispatch.Message, http.StatusInternalServerError)
}

func Provider(message string, err error) *AppError {
	return Wrap(err, CodeProviderError, message, http.StatusInternalServerError)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternalError, message, http.StatusInternalServerError)
}

// From converts any error into an *AppError, treating unknown errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(ErrInternal.Message, err)
}
