package order

import (
	"errors"
	"strings"
)

// Error taxonomy shared by the order and payment services. Callers classify with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("access denied")
	ErrSignatureMismatch = errors.New("invalid payment signature")
	ErrGateway           = errors.New("payment gateway unavailable")
	ErrPersistence       = errors.New("order store unavailable")
	ErrConflict          = errors.New("order was modified concurrently")
)

// ValidationError is a user-correctable input problem.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// Missing reports required fields that were not supplied.
func Missing(fields ...string) error {
	return &ValidationError{Msg: "missing required fields: " + strings.Join(fields, ", ")}
}
