package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateOrder     = errors.New("order already exists")
	ErrForbidden          = errors.New("access forbidden")
)

// Login failure reasons. Both wrap ErrInvalidCredentials so callers outside
// the service see a single outcome; the reason is kept for logs.
var (
	ErrEmailNotFound    = loginFailure("email not found")
	ErrPasswordMismatch = loginFailure("password not correct")
)

type loginFailureError struct {
	reason string
}

func loginFailure(reason string) error {
	return &loginFailureError{reason: reason}
}

func (e *loginFailureError) Error() string { return e.reason }

func (e *loginFailureError) Unwrap() error { return ErrInvalidCredentials }

// ValidationError lists the offending fields of a rejected input.
type ValidationError struct {
	Fields []string
}

// NewValidationError builds a ValidationError from one message per field.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
