// Package service provides application-level services for managing users and tasks.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrInvalidCredentials indicates an unknown username or a wrong password.
	// The two cases are reported identically.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// UserServiceError is a custom error type for user service errors.
type UserServiceError struct {
	Operation string
	Message   string
	Err       error
}

func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

func (e *UserServiceError) Unwrap() error {
	return e.Err
}

// NewUserServiceError creates a new UserServiceError.
func NewUserServiceError(operation, message string, err error) *UserServiceError {
	return &UserServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
