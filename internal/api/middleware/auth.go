package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// TokenVerifier turns an access token into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// Authenticate validates the access token and stores the caller's identity
// in the request context. Requests without a valid token never reach next.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, unauthenticatedMessage(err), err)
			return
		}

		identity, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			if auth.IsUnauthenticated(err) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, unauthenticatedMessage(err), err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// RequireRole rejects authenticated callers that lack role with 403. It must
// run after Authenticate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization required")
				return
			}
			if !identity.HasRole(role) {
				shared.RespondWithError(w, r, http.StatusForbidden, "Insufficient permissions",
					shared.WithElevatedLogLevel())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthenticatedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization required"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	default:
		return "Invalid token"
	}
}
