package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TokenPair is the result of a successful login or refresh. RefreshToken is
// empty when only a new access token was issued.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IdentityVerifier turns bearer tokens into identities and issues new tokens.
// It holds no per-session state.
type IdentityVerifier struct {
	jwt JWTService
	now func() time.Time
}

// NewIdentityVerifier wraps a JWTService.
func NewIdentityVerifier(jwtService JWTService) *IdentityVerifier {
	return &IdentityVerifier{jwt: jwtService, now: time.Now}
}

// Verify validates an access token and returns the caller's identity.
func (v *IdentityVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	claims, err := v.jwt.ValidateToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	return claims.Identity(), nil
}

// IssueTokenPair creates a fresh access and refresh token for a user.
func (v *IdentityVerifier) IssueTokenPair(ctx context.Context, userID uuid.UUID, role string) (*TokenPair, error) {
	expiresAt := v.now().Add(v.jwt.AccessTokenLifetime())

	access, err := v.jwt.GenerateToken(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := v.jwt.GenerateRefreshToken(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated.
func (v *IdentityVerifier) Refresh(ctx context.Context, refreshToken string) (*TokenPair, Identity, error) {
	if refreshToken == "" {
		return nil, Identity{}, ErrMissingToken
	}

	claims, err := v.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, Identity{}, err
	}

	expiresAt := v.now().Add(v.jwt.AccessTokenLifetime())
	access, err := v.jwt.GenerateToken(ctx, claims.UserID, claims.Role)
	if err != nil {
		return nil, Identity{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &TokenPair{AccessToken: access, ExpiresAt: expiresAt}, claims.Identity(), nil
}
