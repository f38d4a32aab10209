package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "test-secret-that-is-long-enough-for-testing"
	wrongSecret     = "wrong-secret-that-is-long-enough-for-testing"
	tokenLifetime   = 60 * time.Minute
	refreshLifetime = 7 * 24 * time.Hour
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestJWTService(t *testing.T, secret string, at time.Time) *hmacJWTService {
	t.Helper()

	svc, err := newHMACJWTService(secret, tokenLifetime, refreshLifetime, func() time.Time { return at })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   "short",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, svc.AccessTokenLifetime())
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, testSecret, fixedTime)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(tokenLifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, Identity{UserID: userID, Role: "admin"}, claims.Identity())
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, fixedTime)
				token, err := svc.GenerateToken(context.Background(), userID, "user")
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, fixedTime).
					GenerateToken(context.Background(), userID, "user")
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, fixedTime.Add(tokenLifetime+time.Hour)), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "within clock skew",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, fixedTime).
					GenerateToken(context.Background(), userID, "user")
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, fixedTime.Add(tokenLifetime+time.Minute)), token
			},
		},
		{
			name: "invalid signature",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, fixedTime).
					GenerateToken(context.Background(), userID, "user")
				require.NoError(t, err)
				return newTestJWTService(t, wrongSecret, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, fixedTime), "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token used as access token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, fixedTime)
				token, err := svc.GenerateRefreshToken(context.Background(), userID, "user")
				require.NoError(t, err)
				return svc, token
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "unsigned token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				claims := jwtCustomClaims{
					UserID:    userID,
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
					SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				assert.True(t, IsUnauthenticated(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := newTestJWTService(t, testSecret, fixedTime)

	refresh, err := svc.GenerateRefreshToken(context.Background(), userID, "user")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, fixedTime.Add(refreshLifetime).Unix(), claims.ExpiresAt.Unix())

	access, err := svc.GenerateToken(context.Background(), userID, "user")
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	later := newTestJWTService(t, testSecret, fixedTime.Add(refreshLifetime+time.Hour))
	_, err = later.ValidateRefreshToken(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)

	_, err = newTestJWTService(t, wrongSecret, fixedTime).ValidateRefreshToken(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
