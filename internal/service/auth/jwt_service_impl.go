package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// minSecretLength is the shortest HMAC secret accepted.
const minSecretLength = 32

// defaultClockSkew is the leeway applied to exp, nbf and iat checks.
const defaultClockSkew = 2 * time.Minute

// hmacJWTService is an implementation of JWTService using HMAC-SHA signing.
type hmacJWTService struct {
	signingKey           []byte
	tokenLifetime        time.Duration
	refreshTokenLifetime time.Duration
	timeFunc             func() time.Time
	clockSkew            time.Duration
}

type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	Role      string    `json:"role"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA signing.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	return newHMACJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.TokenLifetimeMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenLifetimeMinutes)*time.Minute,
		time.Now,
	)
}

func newHMACJWTService(
	secret string,
	accessLifetime, refreshLifetime time.Duration,
	timeFunc func() time.Time,
) (*hmacJWTService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	if accessLifetime <= 0 || refreshLifetime <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}

	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        accessLifetime,
		refreshTokenLifetime: refreshLifetime,
		timeFunc:             timeFunc,
		clockSkew:            defaultClockSkew,
	}, nil
}

// AccessTokenLifetime implements JWTService.AccessTokenLifetime
func (s *hmacJWTService) AccessTokenLifetime() time.Duration {
	return s.tokenLifetime
}

// GenerateToken implements JWTService.GenerateToken
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, role string) (string, error) {
	return s.sign(ctx, userID, role, TokenTypeAccess, s.timeFunc().Add(s.tokenLifetime))
}

// GenerateRefreshToken implements JWTService.GenerateRefreshToken
func (s *hmacJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID, role string) (string, error) {
	return s.sign(ctx, userID, role, TokenTypeRefresh, s.timeFunc().Add(s.refreshTokenLifetime))
}

func (s *hmacJWTService) sign(
	ctx context.Context,
	userID uuid.UUID,
	role, tokenType string,
	expiresAt time.Time,
) (string, error) {
	now := s.timeFunc()

	claims := jwtCustomClaims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign JWT",
			"error", err,
			"user_id", userID,
			"token_type", tokenType,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", tokenType, err)
	}

	return signed, nil
}

// ValidateToken implements JWTService.ValidateToken
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(ctx, tokenString, TokenTypeAccess)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, ErrWrongTokenType):
			return nil, ErrWrongTokenType
		default:
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// ValidateRefreshToken implements JWTService.ValidateRefreshToken
func (s *hmacJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(ctx, tokenString, TokenTypeRefresh)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredRefreshToken
		case errors.Is(err, ErrWrongTokenType):
			return nil, ErrWrongTokenType
		default:
			return nil, ErrInvalidRefreshToken
		}
	}
	return claims, nil
}

// parse verifies signature, time claims and token type. Returned errors are
// the raw jwt errors or ErrWrongTokenType; callers translate them.
func (s *hmacJWTService) parse(ctx context.Context, tokenString, wantType string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		log.Debug("token validation failed",
			"error", err,
			"token_type", wantType,
			"error_type", fmt.Sprintf("%T", err))
		return nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil || claims.ExpiresAt == nil {
		log.Debug("token validation failed: invalid claims", "token_type", wantType)
		return nil, jwt.ErrTokenInvalidClaims
	}

	if claims.TokenType != wantType {
		log.Debug("token validation failed: wrong token type",
			"expected", wantType,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	log.Debug("token validated successfully",
		"user_id", claims.UserID,
		"token_id", claims.ID,
		"token_type", wantType)

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	return &Claims{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  issuedAt,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
