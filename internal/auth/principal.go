package auth

import (
	"context"
	"fmt"
)

// Role is the coarse permission level carried in a token.
type Role string

const (
	// RoleMember is granted to every account at signup.
	RoleMember Role = "MEMBER"
)

// ParseRole accepts only the roles this service issues.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMember:
		return RoleMember, nil
	default:
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
}

// Principal is the verified identity of the caller for one request.
// It is derived from a token and never stored.
type Principal struct {
	SubjectID int64
	Role      Role
}

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. Using a package-private type
// means only this package can create a key of type contextKey, so no other
// package can read or shadow the principal.
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated caller.
//
// Returns (Principal{}, false) if the request is anonymous.
//
// Usage in handlers:
//
//	p, ok := auth.PrincipalFromContext(r.Context())
//	if !ok {
//	    // anonymous caller
//	}
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
