package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidRefreshToken indicates the refresh token is malformed or badly signed
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrWrongTokenType indicates an access token was used where a refresh token
	// was expected, or the other way round
	ErrWrongTokenType = errors.New("wrong token type")
)

// IsUnauthenticated reports whether err means the caller has no verified identity.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrTokenNotYetValid) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidRefreshToken) ||
		errors.Is(err, ErrExpiredRefreshToken) ||
		errors.Is(err, ErrWrongTokenType)
}
