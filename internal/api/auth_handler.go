package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// TokenIssuer issues access/refresh token pairs and exchanges refresh tokens.
type TokenIssuer interface {
	IssueTokenPair(ctx context.Context, userID uuid.UUID, role string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, auth.Identity, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users  service.UserService
	tokens TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users service.UserService, tokens TokenIssuer, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Username and password are required", err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("user registered via API", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, MessageResponse{Message: "User registered successfully"})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Username and password are required", err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	pair, err := h.tokens.IssueTokenPair(r.Context(), user.ID, user.Role)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         newUserResponse(user),
	})
}

// Refresh handles POST /auth/refresh. The refresh token is sent as the bearer
// credential.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	pair, identity, err := h.tokens.Refresh(r.Context(), token)
	if err != nil {
		if auth.IsUnauthenticated(err) {
			HandleAPIError(w, r, auth.ErrInvalidRefreshToken, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).
		Debug("access token refreshed", slog.String("user_id", identity.UserID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, RefreshResponse{
		AccessToken: pair.AccessToken,
		ExpiresAt:   pair.ExpiresAt,
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), identity.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(user))
}
