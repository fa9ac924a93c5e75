package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("admin access required")
	ErrLoginRequired = errors.New("login required")
	ErrEmailTaken    = errors.New("email already registered")
	ErrTitleTaken    = errors.New("a post with this title already exists")
	ErrUnknownEmail  = errors.New("no account found with that email")
	ErrWrongPassword = errors.New("incorrect password")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternal      = errors.New("internal server error")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapErrorToStatus maps common errors to HTTP status codes.
// Admin routes answer 406 to anonymous visitors and 403 to authenticated
// non-admins; both codes are part of the preserved wire behavior.
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrLoginRequired) {
		return http.StatusNotAcceptable
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrTitleTaken) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
