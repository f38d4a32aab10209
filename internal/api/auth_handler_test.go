package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	router   http.Handler
	users    *mocks.MockUserStore
	verifier *auth.IdentityVerifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "handler-test-secret-with-32-characters!",
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60,
		BCryptCost:                  4,
	})
	require.NoError(t, err)
	verifier := auth.NewIdentityVerifier(jwtService)

	users := mocks.NewMockUserStore()
	userService, err := service.NewUserService(users, &mocks.MockPasswordHasher{}, nil)
	require.NoError(t, err)

	h := api.NewAuthHandler(userService, verifier, nil)
	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Test-User")
			if id, err := uuid.Parse(token); err == nil {
				r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: id, Role: domain.RoleUser}))
			}
			next.ServeHTTP(w, r)
		})
	}).Get("/auth/me", h.Me)

	return &authFixture{router: r, users: users, verifier: verifier}
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "created", body: `{"username":"alice","password":"s3cret"}`, wantStatus: http.StatusCreated},
		{
			name:       "missing password",
			body:       `{"username":"alice"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Username and password are required",
		},
		{
			name:       "not json",
			body:       `username=alice`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "password too long",
			body:       `{"username":"alice","password":"` + longPassword + `"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)

			rec := serve(t, f.router, http.MethodPost, "/auth/register", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
				return
			}
			assert.Equal(t, "User registered successfully", resp["message"])
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		f := newAuthFixture(t)
		body := `{"username":"alice","password":"s3cret"}`
		require.Equal(t, http.StatusCreated, serve(t, f.router, http.MethodPost, "/auth/register", body).Code)

		rec := serve(t, f.router, http.MethodPost, "/auth/register", body)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

var longPassword = strings.Repeat("a", 73)

func TestAuthHandler_LoginRefreshMe(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated,
		serve(t, f.router, http.MethodPost, "/auth/register", `{"username":"alice","password":"s3cret"}`).Code)

	rec := serve(t, f.router, http.MethodPost, "/auth/login", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, f.router, http.MethodPost, "/auth/login", `{"username":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var login api.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "alice", login.User.Username)

	identity, err := f.verifier.Verify(context.Background(), login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, identity.UserID)
	assert.Equal(t, domain.RoleUser, identity.Role)

	t.Run("refresh", func(t *testing.T) {
		req := requestWithBearer(http.MethodPost, "/auth/refresh", login.RefreshToken)
		rec := record(f.router, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var out api.RefreshResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		_, err := f.verifier.Verify(context.Background(), out.AccessToken)
		assert.NoError(t, err)
	})

	t.Run("refresh without token", func(t *testing.T) {
		rec := serve(t, f.router, http.MethodPost, "/auth/refresh", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me", func(t *testing.T) {
		req := requestWithBearer(http.MethodGet, "/auth/me", "")
		req.Header.Set("X-Test-User", login.User.ID.String())
		rec := record(f.router, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"`+login.User.ID.String()+`","username":"alice"}`, rec.Body.String())
	})

	t.Run("me for a deleted user", func(t *testing.T) {
		req := requestWithBearer(http.MethodGet, "/auth/me", "")
		req.Header.Set("X-Test-User", uuid.NewString())
		rec := record(f.router, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
