package services

import (
	"errors"
	"fmt"
)

// Stable error kinds the handlers branch on. Client-facing messages come
// from the handler layer, so callers cannot distinguish causes that are
// deliberately blended (wrong code vs no challenge, unknown admin vs
// deactivated admin).
var (
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCodeExpired        = errors.New("code expired")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}
