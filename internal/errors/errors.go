package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is returned when input is malformed or out of bounds.
	ErrValidation = errors.New("validation failed")
	// ErrAuthentication is returned when submitted credentials do not match.
	ErrAuthentication = errors.New("authentication failed")
	// ErrUnauthorized is returned when a bearer token is missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness constraint is violated.
	ErrConflict = errors.New("conflict")
	// ErrInternal is returned for anything unanticipated.
	ErrInternal = errors.New("internal server error")
)

// AppError carries a taxonomy kind and a message that is safe to show to clients.
type AppError struct {
	Kind    error
	Message string
	Details []string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

// Unwrap lets errors.Is match the taxonomy sentinel.
func (e *AppError) Unwrap() error {
	return e.Kind
}

func newAppError(kind error, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a 400 error.
func Validation(details []string, format string, args ...any) *AppError {
	e := newAppError(ErrValidation, format, args...)
	e.Details = details
	return e
}

// Authentication builds a 401 credential mismatch error.
func Authentication(format string, args ...any) *AppError {
	return newAppError(ErrAuthentication, format, args...)
}

// Unauthorized builds a 401 missing/invalid token error.
func Unauthorized(format string, args ...any) *AppError {
	return newAppError(ErrUnauthorized, format, args...)
}

// NotFound builds a 404 error.
func NotFound(format string, args ...any) *AppError {
	return newAppError(ErrNotFound, format, args...)
}

// Conflict builds a 409 error.
func Conflict(format string, args ...any) *AppError {
	return newAppError(ErrConflict, format, args...)
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Error      string   `json:"error"`
	Details    []string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    []string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		StatusCode: e.StatusCode,
		Message:    e.Message,
		Error:      e.Code,
		Details:    e.Details,
	}
}

type mapping struct {
	kind   error
	status int
	code   string
}

var mappings = []mapping{
	{ErrValidation, http.StatusBadRequest, "VALIDATION_FAILED"},
	{ErrAuthentication, http.StatusUnauthorized, "AUTHENTICATION_FAILED"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrConflict, http.StatusConflict, "CONFLICT"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything outside the
// taxonomy becomes a generic 500 so internal detail never reaches the client.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if !errors.Is(err, m.kind) {
			continue
		}
		httpErr := NewHTTPError(m.status, m.kind.Error(), m.code)
		var appErr *AppError
		if errors.As(err, &appErr) {
			httpErr.Message = appErr.Error()
			httpErr.Details = appErr.Details
		}
		return httpErr
	}
	return NewHTTPError(http.StatusInternalServerError, ErrInternal.Error(), "INTERNAL_ERROR")
}
