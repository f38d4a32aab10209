package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the verified caller of a request.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role string) bool {
	return i.Role == role
}

type identityKey struct{}

// WithIdentity stores the verified identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}
