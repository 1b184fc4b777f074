package auth

import "context"

// Identity is the authenticated caller established by the request gate and
// carried through the request context. It replaces any ambient security
// state: handlers read the identity explicitly from the context.
type Identity struct {
	Username string
	Roles    []string
}

// contextKey is a private type for context keys to avoid collisions with
// other packages.
type contextKey string

const identityContextKey contextKey = "auth_identity"

// NewContextWithIdentity returns a child context carrying the identity.
func NewContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the identity set by the request gate. The
// second return value reports whether an identity was present.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}

// HasRole reports whether the identity carries the given role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
