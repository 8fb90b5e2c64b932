package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Verification outcomes, used as log attributes and metric labels.
const (
	OutcomeOK        = "ok"
	OutcomeMissing   = "missing"
	OutcomeMalformed = "malformed"
	OutcomeExpired   = "expired"
	OutcomeInvalid   = "invalid"
)

// TokenVerifier is the part of TokenService the middleware needs.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// VerificationObserver is told the outcome of every authentication attempt.
// internal/metrics implements it with a Prometheus counter.
type VerificationObserver interface {
	TokenVerified(outcome string)
}

type nopObserver struct{}

func (nopObserver) TokenVerified(string) {}

// Authenticator turns the Authorization header into an optional Principal.
type Authenticator struct {
	tokens   TokenVerifier
	logger   *slog.Logger
	observer VerificationObserver
}

// NewAuthenticator builds an Authenticator. observer may be nil.
func NewAuthenticator(tokens TokenVerifier, logger *slog.Logger, observer VerificationObserver) *Authenticator {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Authenticator{tokens: tokens, logger: logger, observer: observer}
}

// Authenticate is the chi middleware form of NewAuthenticator(...).Middleware
// with no observer.
func Authenticate(tokens TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return NewAuthenticator(tokens, logger, nil).Middleware
}

// Middleware attaches a Principal to the request context when the request
// carries a valid bearer token.
//
// It NEVER rejects a request. Whether anonymity is acceptable is a per-route
// decision made later by Enforce, so a missing or bad token just means the
// handler chain runs without a principal.
//
// MIDDLEWARE PATTERN IN GO:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	    })
//	}
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := a.PrincipalFromRequest(r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromRequest verifies the bearer token on r, if any.
//
// Failures are logged at DEBUG with their kind only. The token itself is
// never logged.
func (a *Authenticator) PrincipalFromRequest(r *http.Request) (Principal, bool) {
	raw, outcome := bearerToken(r)
	if outcome != OutcomeOK {
		a.fail(r, outcome, nil)
		return Principal{}, false
	}

	p, err := a.tokens.Verify(raw)
	if err != nil {
		a.fail(r, outcomeOf(err), err)
		return Principal{}, false
	}

	a.observer.TokenVerified(OutcomeOK)
	return p, true
}

func (a *Authenticator) fail(r *http.Request, outcome string, err error) {
	a.observer.TokenVerified(outcome)
	attrs := []any{"kind", outcome, "path", r.URL.Path}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	a.logger.Debug("authentication failed", attrs...)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", OutcomeMissing
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", OutcomeMalformed
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", OutcomeMalformed
	}
	return token, OutcomeOK
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return OutcomeExpired
	case errors.Is(err, ErrTokenMalformed):
		return OutcomeMalformed
	default:
		return OutcomeInvalid
	}
}
