// PASSWORD HASHING
//
// WHY BCRYPT?
// bcrypt is deliberately slow, which makes offline brute force expensive.
// It generates a random salt per call and embeds salt and cost in its output,
// so the stored string is all Verify needs.
//
// Hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 = 4096 iterations)
//	 version

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/community-forum/internal/apperror"
)

// defaultCost is the bcrypt work factor used when none is configured.
//
// COST TUNING RULE OF THUMB:
// Set cost so that hashing takes ~200–300ms on your production hardware.
// Too low → easy to crack. Too high → login is sluggish under load.
const defaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer inputs are rejected
// instead of being silently truncated.
const maxPasswordBytes = 72

// Hasher provides bcrypt hashing and verification. It does no I/O and is
// safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost. A zero cost selects
// the default (12). Tests pass bcrypt.MinCost (4) to stay fast.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = defaultCost
	}
	return &Hasher{cost: cost}
}

// Cost reports the work factor new hashes are produced with.
func (h *Hasher) Cost() int { return h.cost }

// Hash hashes the plaintext password with a fresh random salt.
//
// A password longer than 72 bytes is a validation error. Any failure inside
// bcrypt itself is reported as apperror.ErrHashing.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", apperror.ValidationFailed("password", fmt.Sprintf("password must be %d bytes or fewer", maxPasswordBytes))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", apperror.Hashing(fmt.Errorf("auth: hashing password: %w", err))
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash.
//
// The comparison inside bcrypt is constant time. A mismatch, or a hash that is
// structurally not a bcrypt hash we can read (too short, wrong prefix, bad
// cost, newer version), yields (false, nil): from the caller's point of view
// the credential simply does not match. A hash that looks right but cannot be
// decoded yields apperror.ErrHashing, because that means stored data is corrupt.
func (h *Hasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if isUnreadableHash(err) {
		return false, nil
	}
	return false, apperror.Hashing(fmt.Errorf("auth: comparing password hash: %w", err))
}

func isUnreadableHash(err error) bool {
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
		return true
	}
	var (
		prefixErr  bcrypt.InvalidHashPrefixError
		costErr    bcrypt.InvalidCostError
		versionErr bcrypt.HashVersionTooNewError
	)
	return errors.As(err, &prefixErr) || errors.As(err, &costErr) || errors.As(err, &versionErr)
}
