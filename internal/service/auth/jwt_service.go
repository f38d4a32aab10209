package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user and role.
	GenerateToken(ctx context.Context, userID uuid.UUID, role string) (string, error)

	// ValidateToken validates an access token and extracts its claims.
	// A refresh token is rejected with ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token. Refresh tokens live
	// longer and can only be exchanged for new access tokens.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID, role string) (string, error)

	// ValidateRefreshToken validates a refresh token and extracts its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// AccessTokenLifetime reports how long issued access tokens stay valid.
	AccessTokenLifetime() time.Duration
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType string    `json:"type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Identity returns the verified caller described by the claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Role: c.Role}
}
