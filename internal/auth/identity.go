package auth

import (
	"context"
	"slices"

	"github.com/evcraddock/realty/internal/models"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Roles  []models.Role
}

// HasRole reports whether the identity holds any of roles.
func (id Identity) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if slices.Contains(id.Roles, r) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity holds the Admin role.
func (id Identity) IsAdmin() bool {
	return id.HasRole(models.RoleAdmin)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
