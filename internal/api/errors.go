package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var ve *domain.ValidationError

	switch {
	case err == nil:
		return http.StatusOK

	// Field-level validation problems
	case errors.As(err, &ve), errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity

	// Body is not JSON or not an object
	case errors.Is(err, domain.ErrInvalidFormat):
		return http.StatusBadRequest

	// Authentication errors
	case auth.IsUnauthenticated(err),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	// Not found, including tasks owned by someone else
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var ve *domain.ValidationError

	switch {
	case errors.As(err, &ve), errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	case errors.Is(err, domain.ErrInvalidFormat):
		return "Invalid request format"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization required"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Invalid refresh token"

	case auth.IsUnauthenticated(err), errors.Is(err, domain.ErrUnauthorized):
		return "Invalid token"

	case errors.Is(err, domain.ErrForbidden):
		return "Insufficient permissions"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. A non-empty message
// replaces the default safe message; validation errors always carry their
// field messages.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.HasErrors() {
		opts = append(opts, shared.WithFieldErrors(ve.Fields))
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
