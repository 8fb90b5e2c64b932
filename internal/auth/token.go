// Package auth provides stateless authentication and authorization for the forum API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client calls POST /users/login with email + password
// 2. Server verifies the bcrypt hash and issues a signed access token
// 3. Client sends "Authorization: Bearer <token>" on subsequent calls
// 4. Authenticate middleware verifies the token and puts a Principal in the
//    request context; it never rejects a request on its own
// 5. Enforce middleware applies the route's Policy; services call AssertOwner
//    before mutating a post or comment
//
// JWT STRUCTURE (three base64url parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"42","role":"MEMBER","iat":...,"exp":...,"jti":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Tokens are never stored server side, so there is no revocation: a token is
// valid until exp. Rotating the secret (a restart with a new JWT_SECRET)
// invalidates every outstanding token at once.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	issuer       = "community-forum"
	minSecretLen = 16
)

// Token verification failures. Callers switch on these with errors.Is; the
// middleware uses them only to pick a log/metric label.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
)

// TokenService issues and verifies HS256 access tokens.
//
// The secret is copied at construction and never changes afterwards, so a
// TokenService is safe for concurrent use.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given secret.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d bytes", minSecretLen)
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// claims is the JWT payload. "sub" carries the decimal user ID.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for subjectID that expires ttl from now.
//
// exp travels as whole seconds. For a positive ttl it is rounded up so the
// token is never already expired when it is handed out; a non-positive ttl
// produces a token that is expired on arrival.
func (s *TokenService) Issue(subjectID int64, role Role, ttl time.Duration) (string, error) {
	now := s.now()
	exp := now.Add(ttl)
	if ttl > 0 {
		exp = exp.Add(time.Second - 1).Truncate(time.Second)
	}

	c := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        xid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and checks a token and returns the Principal it names.
//
// VALIDATION CHECKS:
//   - Algorithm is exactly HS256 (rejects "none" and algorithm confusion)
//   - Signature verifies against the secret
//   - exp is present and now < exp
//   - Issuer, subject and role are well formed
//
// Errors wrap exactly one of ErrTokenExpired, ErrTokenMalformed or ErrTokenInvalid.
func (s *TokenService) Verify(tokenStr string) (Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, classifyTokenError(err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Principal{}, fmt.Errorf("auth: %w: unexpected claims", ErrTokenInvalid)
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, fmt.Errorf("auth: %w: bad subject", ErrTokenInvalid)
	}
	role, err := ParseRole(c.Role)
	if err != nil {
		return Principal{}, fmt.Errorf("auth: %w: %v", ErrTokenInvalid, err)
	}

	return Principal{SubjectID: id, Role: role}, nil
}

// classifyTokenError folds the jwt library's error tree into our three kinds.
// A bad signature counts as malformed: the caller cannot tell a forged token
// from a corrupted one.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("auth: %w", ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("auth: %w: %v", ErrTokenMalformed, err)
	default:
		return fmt.Errorf("auth: %w: %v", ErrTokenInvalid, err)
	}
}
