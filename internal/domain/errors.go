package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or input payload fails validation.
	// Field-level details are carried by *ValidationError, which matches this sentinel.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when no verified identity accompanies an operation.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrForbidden is returned when the verified identity lacks the required role.
	ErrForbidden = errors.New("forbidden operation")
)

// ValidationError collects field-keyed validation messages.
// Several messages may be recorded for the same field.
type ValidationError struct {
	Fields map[string][]string
	Err    error
}

// NewValidationError creates a ValidationError holding a single field message.
// When err is nil the error wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	ve := &ValidationError{Err: err}
	ve.Add(field, message)
	return ve
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field message was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Error implements the error interface. Fields are listed in sorted order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}

	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Unwrap returns the wrapped cause.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// Is makes every ValidationError match ErrValidation regardless of its cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
