package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/community-forum/internal/apperror"
)

type policyKind int

const (
	kindPublic policyKind = iota
	kindAuthenticated
	kindRole
)

// Policy is the authentication requirement attached to a route.
// Compare policies with ==.
type Policy struct {
	kind policyKind
	role Role
}

var (
	// Public routes run with or without a principal.
	Public = Policy{kind: kindPublic}
	// AuthenticatedAny routes need a principal of any role.
	AuthenticatedAny = Policy{kind: kindAuthenticated}
)

// RequireRole routes need a principal holding exactly role.
func RequireRole(role Role) Policy {
	return Policy{kind: kindRole, role: role}
}

func (p Policy) String() string {
	switch p.kind {
	case kindPublic:
		return "public"
	case kindAuthenticated:
		return "authenticated"
	default:
		return "role:" + string(p.role)
	}
}

// Authorize decides whether a caller satisfies p.
//
// Returns nil, an error wrapping apperror.ErrUnauthorized when a principal is
// required but absent, or one wrapping apperror.ErrForbidden when the
// principal's role does not match. The messages are fixed strings.
func Authorize(p Policy, principal Principal, ok bool) error {
	if p.kind == kindPublic {
		return nil
	}
	if !ok {
		return apperror.Unauthorized("authentication required")
	}
	if p.kind == kindRole && principal.Role != p.role {
		return apperror.Forbidden("insufficient role")
	}
	return nil
}

// Enforce is middleware that runs Authorize against the principal placed in
// the context by Authenticate. Denied requests never reach the handler.
func Enforce(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if err := Authorize(p, principal, ok); err != nil {
				writeDenied(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeDenied(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if errors.Is(err, apperror.ErrForbidden) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden","message":"insufficient role"}`))
		return
	}
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"authentication required"}`))
}

// Route binds a method and chi pattern to a Policy and a handler.
type Route struct {
	Method  string
	Pattern string
	Policy  Policy
	Handler http.HandlerFunc
}

// RouteTable is the static list of every route the server exposes.
// Each route's policy is visible in one place instead of being spread
// across router groups.
type RouteTable []Route

// PolicyFor returns the policy registered for method and pattern.
func (t RouteTable) PolicyFor(method, pattern string) (Policy, bool) {
	for _, rt := range t {
		if rt.Method == method && rt.Pattern == pattern {
			return rt.Policy, true
		}
	}
	return Policy{}, false
}

// Mount registers every route on r behind Enforce(route.Policy).
func (t RouteTable) Mount(r chi.Router) {
	for _, rt := range t {
		r.With(Enforce(rt.Policy)).Method(rt.Method, rt.Pattern, rt.Handler)
	}
}
